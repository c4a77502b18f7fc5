package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// Document is the uploaded location-schema file: a JSON object keyed by
// location id. The venue build pipeline has emitted booleans both as
// true/false and as 0/1 over time, and slot ids both as numbers and as
// numeric strings, so the decoders accept every shape seen in the wild.
type Document map[string]locationEntry

type locationEntry struct {
	Type       string      `json:"type"`
	ForBooking *flexBool   `json:"for_booking"`
	Slots      []slotEntry `json:"slots"`
}

type slotEntry struct {
	ID                slotID    `json:"id"`
	Name              string    `json:"name"`
	SupportsStreaming *flexBool `json:"supports_streaming"`
	Format            string    `json:"format"`
	Trigger           flexBool  `json:"trigger"`
}

// flexBool decodes true/false, 0/1, and null
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*b = false
		return nil
	case "true":
		*b = true
		return nil
	case "false":
		*b = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid boolean value %s: %w", data, err)
	}
	*b = n != 0
	return nil
}

// slotID decodes an integer given as a number or a numeric string
type slotID int64

func (s *slotID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSlotID, raw)
	}
	*s = slotID(n)
	return nil
}

// ParseDocument decodes and validates an uploaded schema document into
// location models ordered by location id. Scene assignment happens at
// persist time.
func ParseDocument(data []byte) ([]*models.Location, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	locations := make([]*models.Location, 0, len(doc))
	for id, entry := range doc {
		if id == "" {
			return nil, fmt.Errorf("%w: empty location id", ErrInvalidDocument)
		}
		if entry.Type == "" {
			return nil, fmt.Errorf("%w: location %q has no type", ErrInvalidDocument, id)
		}

		location := &models.Location{
			ID:         id,
			Type:       entry.Type,
			ForBooking: boolOrDefault(entry.ForBooking, true),
		}
		for _, slot := range entry.Slots {
			if slot.Name == "" {
				return nil, fmt.Errorf("%w: slot %d of location %q has no name", ErrInvalidDocument, slot.ID, id)
			}
			if slot.Format == "" {
				return nil, fmt.Errorf("%w: slot %d of location %q has no format", ErrInvalidDocument, slot.ID, id)
			}
			location.Slots = append(location.Slots, models.Slot{
				ID:                int64(slot.ID),
				LocationID:        id,
				Name:              slot.Name,
				SupportsStreaming: boolOrDefault(slot.SupportsStreaming, true),
				Format:            slot.Format,
				Trigger:           bool(slot.Trigger),
			})
		}
		locations = append(locations, location)
	}

	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
	return locations, nil
}

func boolOrDefault(b *flexBool, def bool) bool {
	if b == nil {
		return def
	}
	return bool(*b)
}
