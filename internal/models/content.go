package models

// Content kind constants
const (
	KindImage     = "image"
	KindVideo     = "video"
	KindStreaming = "streaming"
)

// ContentItem represents a typed media unit assigned to a slot.
// OrderID values are unique and contiguous starting at 1 within the
// owning (booking, slot) collection.
type ContentItem struct {
	ID         int64   `json:"content_id" gorm:"primaryKey;autoIncrement;column:id"`
	BookingID  *int64  `json:"booking,omitempty" gorm:"index;column:booking"`
	SlotID     int64   `json:"slot" gorm:"not null;index;column:slot"`
	Kind       string  `json:"type" gorm:"type:text;not null;column:kind"`
	URN        string  `json:"s3_urn" gorm:"type:text;not null;column:urn"`
	Preview    *string `json:"preview,omitempty" gorm:"type:text;column:preview"`
	Name       string  `json:"name" gorm:"type:text;not null;column:name"`
	OrderID    int     `json:"order_id" gorm:"not null;column:order_id" validate:"gte=1"`
	LocationID string  `json:"location_id,omitempty" gorm:"-"`
}

// TableName overrides the GORM table name
func (ContentItem) TableName() string { return "contents" }

// IsVideo reports whether the item is pausable video content
func (c *ContentItem) IsVideo() bool {
	return c.Kind == KindVideo
}
