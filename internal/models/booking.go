package models

// Booking represents a reservation of a location for a time window.
// All timestamps are unix epoch milliseconds.
type Booking struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Title        string  `json:"title" gorm:"type:text;not null;column:title" validate:"required,max=150"`
	Description  string  `json:"description" gorm:"type:text;not null;column:description" validate:"max=700"`
	StartDate    int64   `json:"start_date" gorm:"not null;column:start_date" validate:"required"`
	Duration     int64   `json:"duration" gorm:"not null;column:duration" validate:"required,gt=0"`
	EventDate    *int64  `json:"event_date,omitempty" gorm:"column:event_date"`
	CreationDate int64   `json:"creation_date" gorm:"not null;column:creation_date"`
	Owner        *string `json:"owner,omitempty" gorm:"type:text;column:owner"`
	Preview      *string `json:"preview,omitempty" gorm:"type:text;column:preview"`
	LocationID   string  `json:"location" gorm:"type:text;not null;column:location" validate:"required"`
}

// TableName overrides the GORM table name
func (Booking) TableName() string { return "bookings" }

// EndDate returns the booking's end timestamp in epoch milliseconds
func (b *Booking) EndDate() int64 {
	return b.StartDate + b.Duration
}

// IsLiveAt reports whether the booking's time window covers the given
// epoch-millisecond timestamp.
func (b *Booking) IsLiveAt(nowMillis int64) bool {
	return b.StartDate <= nowMillis && nowMillis < b.EndDate()
}
