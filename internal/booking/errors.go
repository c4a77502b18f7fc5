package booking

import "errors"

// Custom booking errors
var (
	// ErrInvalidDuration indicates a duration outside the configured
	// booking time bounds
	ErrInvalidDuration = errors.New("incorrect duration of booking")

	// ErrOverlap indicates the requested window collides with an existing
	// booking at the same location
	ErrOverlap = errors.New("booking overlaps an existing booking")

	// ErrUnknownLocation indicates the booking references a location that
	// is not in the schema or is not bookable
	ErrUnknownLocation = errors.New("location is not available for booking")

	// ErrNotOwner indicates the caller does not own the booking
	ErrNotOwner = errors.New("caller is not the booking owner")
)

// IsInvalidDuration checks if the error is a duration bounds error
func IsInvalidDuration(err error) bool {
	return errors.Is(err, ErrInvalidDuration)
}

// IsOverlap checks if the error is a booking overlap error
func IsOverlap(err error) bool {
	return errors.Is(err, ErrOverlap)
}

// IsNotOwner checks if the error is an ownership error
func IsNotOwner(err error) bool {
	return errors.Is(err, ErrNotOwner)
}
