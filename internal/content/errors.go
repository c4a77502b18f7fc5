package content

import "errors"

// Custom content errors
var (
	// ErrLimitReached indicates the booking's content quota is exhausted
	ErrLimitReached = errors.New("content limit reached for booking")

	// ErrInvalidKind indicates an unsupported content kind
	ErrInvalidKind = errors.New("invalid content kind")

	// ErrUnknownSlot indicates the targeted slot is not in the schema
	ErrUnknownSlot = errors.New("slot is not in the location schema")

	// ErrStreamingUnsupported indicates streaming content assigned to a
	// slot without streaming support
	ErrStreamingUnsupported = errors.New("slot does not support streaming")

	// ErrInvalidOrder indicates a reorder payload that does not cover the
	// collection with positions 1..N
	ErrInvalidOrder = errors.New("order payload does not match collection")
)

// IsLimitReached checks if the error is a quota error
func IsLimitReached(err error) bool {
	return errors.Is(err, ErrLimitReached)
}

// IsInvalidOrder checks if the error is a reorder payload error
func IsInvalidOrder(err error) bool {
	return errors.Is(err, ErrInvalidOrder)
}
