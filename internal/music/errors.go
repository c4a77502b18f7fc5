package music

import "errors"

// Custom music errors
var (
	// ErrLimitReached indicates the booking's music quota is exhausted
	ErrLimitReached = errors.New("music limit reached for booking")

	// ErrUnknownLocation indicates the targeted location is not in the
	// schema
	ErrUnknownLocation = errors.New("location is not in the schema")

	// ErrInvalidOrder indicates a reorder payload that does not cover the
	// playlist with positions 1..N
	ErrInvalidOrder = errors.New("order payload does not match playlist")
)

// IsLimitReached checks if the error is a quota error
func IsLimitReached(err error) bool {
	return errors.Is(err, ErrLimitReached)
}

// IsInvalidOrder checks if the error is a reorder payload error
func IsInvalidOrder(err error) bool {
	return errors.Is(err, ErrInvalidOrder)
}
