package livesync

import (
	"encoding/json"
	"fmt"
)

// Envelope type tags understood by the live-sync subsystem
const (
	// TypeInitBookingStates is the server-pushed bulk snapshot of slot
	// playback states for a booking.
	TypeInitBookingStates = "init_booking_states"

	// TypeSwitchContent is the outbound command selecting which content a
	// slot displays and whether video is paused.
	TypeSwitchContent = "switch-content"
)

// Envelope is the wire frame exchanged over a booking channel. Data is
// decoded lazily based on Type; unknown types are dropped at the channel
// boundary.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SlotSync is one entry of an init_booking_states snapshot
type SlotSync struct {
	Booking      int64      `json:"booking"`
	Slot         int64      `json:"slot"`
	ContentIndex int        `json:"content_index"`
	Paused       PausedFlag `json:"is_paused"`
}

// SwitchCommand is the payload of a switch-content command
type SwitchCommand struct {
	Slot         int64 `json:"slot"`
	ContentIndex int   `json:"content_index"`
	Paused       bool  `json:"is_paused"`
}

// PausedFlag is the tri-state is_paused wire value. The venue runtime has
// historically emitted true/false, 0/1, and null (unknown), so decoding
// accepts all three shapes.
type PausedFlag struct {
	Known bool
	Value bool
}

// UnmarshalJSON decodes booleans, numbers, and null into the flag
func (f *PausedFlag) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null":
		*f = PausedFlag{}
		return nil
	case "true":
		*f = PausedFlag{Known: true, Value: true}
		return nil
	case "false":
		*f = PausedFlag{Known: true, Value: false}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid is_paused value %s: %w", s, err)
	}
	*f = PausedFlag{Known: true, Value: n != 0}
	return nil
}

// MarshalJSON encodes the flag as true/false or null when unknown
func (f PausedFlag) MarshalJSON() ([]byte, error) {
	if !f.Known {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns the flag as a nullable bool
func (f PausedFlag) Ptr() *bool {
	if !f.Known {
		return nil
	}
	v := f.Value
	return &v
}

// DecodeEnvelope parses a raw frame into an envelope. Frames without a type
// tag are rejected.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("envelope missing type tag")
	}
	return &env, nil
}

// BookingStates decodes the envelope's data as an init_booking_states
// snapshot
func (e *Envelope) BookingStates() ([]SlotSync, error) {
	if e.Type != TypeInitBookingStates {
		return nil, fmt.Errorf("envelope type %q is not %s", e.Type, TypeInitBookingStates)
	}
	var states []SlotSync
	if err := json.Unmarshal(e.Data, &states); err != nil {
		return nil, fmt.Errorf("malformed booking states payload: %w", err)
	}
	return states, nil
}

// SwitchCommand decodes the envelope's data as a switch-content command
func (e *Envelope) SwitchCommand() (SwitchCommand, error) {
	if e.Type != TypeSwitchContent {
		return SwitchCommand{}, fmt.Errorf("envelope type %q is not %s", e.Type, TypeSwitchContent)
	}
	var cmd SwitchCommand
	if err := json.Unmarshal(e.Data, &cmd); err != nil {
		return SwitchCommand{}, fmt.Errorf("malformed switch command payload: %w", err)
	}
	return cmd, nil
}

// NewBookingStates builds an init_booking_states envelope
func NewBookingStates(states []SlotSync) (Envelope, error) {
	data, err := json.Marshal(states)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode booking states: %w", err)
	}
	return Envelope{Type: TypeInitBookingStates, Data: data}, nil
}

// NewSwitchContent builds a switch-content envelope
func NewSwitchContent(cmd SwitchCommand) (Envelope, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode switch command: %w", err)
	}
	return Envelope{Type: TypeSwitchContent, Data: data}, nil
}
