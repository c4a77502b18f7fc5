// Package ordering implements the drag-and-drop order reconciliation used
// for slot content and music playlists. Given a collection of order-indexed
// items and the order values at the drag's start and drop positions, it
// produces a renumbered, gap-free ordering plus the positions payload to
// persist.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidPositions indicates a positions payload that does not cover a
// collection with each of 1..N used exactly once
var ErrInvalidPositions = errors.New("positions do not cover the collection")

// Item is one entry of an ordered collection. ID is the stable identity
// used in the persisted reorder payload; Order is its 1-based order value.
type Item struct {
	ID    int64
	Order int
}

// Positions maps item IDs to their new 1-based positions
type Positions map[int64]int

// Reconcile moves the item whose order value equals start to the position of
// the item whose order value equals drop, shifting displaced items one step
// toward the vacated position. The result is sorted ascending with order
// values renumbered to exactly 1..N.
//
// A start or drop of zero, or an empty collection, is a no-op: the input is
// returned unchanged with a nil payload. Order value 0 therefore cannot be
// dragged; collections at rest are numbered from 1.
func Reconcile(items []Item, start, drop int) ([]Item, Positions) {
	if len(items) == 0 || start == 0 || drop == 0 {
		return items, nil
	}

	result := make([]Item, len(items))
	copy(result, items)

	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })

	low, high := start, drop
	if low > high {
		low, high = high, low
	}
	shift := sign(drop - start)

	for i := range result {
		switch {
		case result[i].Order == start:
			result[i].Order = drop
		case result[i].Order == drop:
			// The displaced item steps back toward where the dragged
			// item came from.
			result[i].Order = drop - shift
		case low < result[i].Order && result[i].Order < high:
			result[i].Order -= shift
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })

	positions := make(Positions, len(result))
	for i := range result {
		result[i].Order = i + 1
		positions[result[i].ID] = i + 1
	}

	return result, positions
}

// Validate checks that positions covers exactly the given item ids and
// that the position values are a permutation of 1..N.
func Validate(ids []int64, positions Positions) error {
	if len(positions) != len(ids) {
		return fmt.Errorf("%w: %d entries for %d items", ErrInvalidPositions, len(positions), len(ids))
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	seen := make(map[int]bool, len(ids))
	for id, position := range positions {
		if !known[id] {
			return fmt.Errorf("%w: unknown item %d", ErrInvalidPositions, id)
		}
		if position < 1 || position > len(ids) || seen[position] {
			return fmt.Errorf("%w: invalid position %d for item %d", ErrInvalidPositions, position, id)
		}
		seen[position] = true
	}
	return nil
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
