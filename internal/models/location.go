package models

// Location represents a bookable venue location within a scene
type Location struct {
	ID         string  `json:"id" gorm:"type:text;primaryKey;column:id"`
	Type       string  `json:"type" gorm:"type:text;not null;column:type"`
	Scene      string  `json:"scene" gorm:"type:text;not null;column:scene"`
	ForBooking bool    `json:"for_booking" gorm:"not null;default:1;column:for_booking"`
	Preview    *string `json:"preview,omitempty" gorm:"type:text;column:preview"`

	// Populated by joins, not stored in this table
	Slots []Slot `json:"slots,omitempty" gorm:"foreignKey:LocationID"`
}

// TableName overrides the GORM table name
func (Location) TableName() string { return "locations" }

// Slot represents a named display surface within a location.
// Slot IDs are stable and assigned by the location schema.
type Slot struct {
	ID                int64  `json:"id" gorm:"primaryKey;column:id"`
	LocationID        string `json:"location" gorm:"type:text;not null;index;column:location"`
	Name              string `json:"name" gorm:"type:text;not null;column:name"`
	SupportsStreaming bool   `json:"supports_streaming" gorm:"not null;default:1;column:supports_streaming"`
	Format            string `json:"format" gorm:"type:text;not null;column:format"`
	Trigger           bool   `json:"trigger" gorm:"not null;column:trigger_area"`
}

// TableName overrides the GORM table name
func (Slot) TableName() string { return "slots" }
