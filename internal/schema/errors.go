package schema

import "errors"

// Custom schema errors
var (
	// ErrInvalidDocument indicates an uploaded schema file that is not a
	// valid location schema
	ErrInvalidDocument = errors.New("invalid location schema document")

	// ErrInvalidSlotID indicates a slot id that is not an integer
	ErrInvalidSlotID = errors.New("invalid slot id")
)

// IsInvalidDocument checks if the error is a schema validation error
func IsInvalidDocument(err error) bool {
	return errors.Is(err, ErrInvalidDocument) || errors.Is(err, ErrInvalidSlotID)
}
