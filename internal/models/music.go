package models

// MusicItem represents a playlist entry for a location.
// OrderID values are unique and contiguous starting at 1 within the
// owning (booking, location) playlist.
type MusicItem struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	BookingID  *int64 `json:"booking,omitempty" gorm:"index;column:booking"`
	LocationID string `json:"location" gorm:"type:text;not null;index;column:location"`
	URN        string `json:"s3_urn" gorm:"type:text;not null;column:urn"`
	Name       string `json:"name" gorm:"type:text;not null;column:name"`
	OrderID    int    `json:"order_id" gorm:"not null;column:order_id" validate:"gte=1"`
}

// TableName overrides the GORM table name
func (MusicItem) TableName() string { return "music" }
