package livesync

import "errors"

// Custom live-sync errors
var (
	// ErrChannelDown indicates the booking channel has no live transport;
	// outbound commands are dropped until the next reconnect.
	ErrChannelDown = errors.New("booking channel is not connected")

	// ErrNoConnection indicates no channel is registered for the booking
	ErrNoConnection = errors.New("no live connection for booking")

	// ErrNotVideo indicates a pause command targeted non-video content
	ErrNotVideo = errors.New("active content is not a video")

	// ErrInvalidContentIndex indicates a negative content index
	ErrInvalidContentIndex = errors.New("content index must be non-negative")

	// ErrSchemaUnavailable indicates the location schema has no entry for
	// the booking's location yet
	ErrSchemaUnavailable = errors.New("location schema not loaded")
)

// IsChannelDown checks if the error is a channel down error
func IsChannelDown(err error) bool {
	return errors.Is(err, ErrChannelDown)
}

// IsNoConnection checks if the error is a missing connection error
func IsNoConnection(err error) bool {
	return errors.Is(err, ErrNoConnection)
}

// IsNotVideo checks if the error is a non-video pause error
func IsNotVideo(err error) bool {
	return errors.Is(err, ErrNotVideo)
}
