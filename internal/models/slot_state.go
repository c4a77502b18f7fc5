package models

// SlotState is the persisted playback state of one slot within a booking.
// It is upserted by the realtime hub on every switch-content command and
// replayed to new subscribers as the bulk sync snapshot.
//
// Paused is tri-state: nil means unknown (never set for this slot), which
// only matters for video content.
type SlotState struct {
	BookingID    int64 `json:"booking" gorm:"primaryKey;column:booking"`
	SlotID       int64 `json:"slot" gorm:"primaryKey;column:slot"`
	ContentIndex int   `json:"content_index" gorm:"not null;default:0;column:content_index"`
	Paused       *bool `json:"is_paused" gorm:"column:is_paused"`
}

// TableName overrides the GORM table name
func (SlotState) TableName() string { return "slot_states" }
