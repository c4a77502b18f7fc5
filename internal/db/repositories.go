package db

// Repositories provides access to all database repositories
type Repositories struct {
	Bookings   *BookingRepository
	Locations  *LocationRepository
	Contents   *ContentRepository
	Music      *MusicRepository
	SlotStates *SlotStateRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Bookings:   NewBookingRepository(db),
		Locations:  NewLocationRepository(db),
		Contents:   NewContentRepository(db),
		Music:      NewMusicRepository(db),
		SlotStates: NewSlotStateRepository(db),
	}
}
