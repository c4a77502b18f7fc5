package ordering

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: int64(i + 1), Order: i + 1}
	}
	return items
}

func orderByID(items []Item) map[int64]int {
	m := make(map[int64]int, len(items))
	for _, item := range items {
		m[item.ID] = item.Order
	}
	return m
}

func TestReconcile_DragForward(t *testing.T) {
	// a,b,c,d at orders 1..4; drag a (start=1) onto c (drop=3)
	items := []Item{
		{ID: 1, Order: 1}, // a
		{ID: 2, Order: 2}, // b
		{ID: 3, Order: 3}, // c
		{ID: 4, Order: 4}, // d
	}

	result, positions := Reconcile(items, 1, 3)

	require.Len(t, result, 4)
	got := orderByID(result)
	assert.Equal(t, 1, got[2]) // b -> 1
	assert.Equal(t, 2, got[3]) // c -> 2
	assert.Equal(t, 3, got[1]) // a -> 3
	assert.Equal(t, 4, got[4]) // d -> 4

	assert.Equal(t, Positions{2: 1, 3: 2, 1: 3, 4: 4}, positions)
}

func TestReconcile_DragBackward(t *testing.T) {
	items := orderedItems(4)

	result, _ := Reconcile(items, 4, 2)

	got := orderByID(result)
	assert.Equal(t, 1, got[1])
	assert.Equal(t, 2, got[4]) // dragged item lands at drop
	assert.Equal(t, 3, got[2]) // displaced item steps toward the vacated slot
	assert.Equal(t, 4, got[3])
}

func TestReconcile_AdjacentSwap(t *testing.T) {
	items := orderedItems(3)

	result, _ := Reconcile(items, 2, 3)

	got := orderByID(result)
	assert.Equal(t, 1, got[1])
	assert.Equal(t, 2, got[3])
	assert.Equal(t, 3, got[2])
}

func TestReconcile_SameStartAndDrop(t *testing.T) {
	items := orderedItems(5)

	result, positions := Reconcile(items, 3, 3)

	require.NotNil(t, positions)
	for _, item := range result {
		assert.Equal(t, int(item.ID), item.Order)
	}
}

func TestReconcile_NoOpGuards(t *testing.T) {
	items := orderedItems(3)

	result, positions := Reconcile(items, 0, 2)
	assert.Nil(t, positions)
	assert.Equal(t, items, result)

	result, positions = Reconcile(items, 2, 0)
	assert.Nil(t, positions)
	assert.Equal(t, items, result)

	result, positions = Reconcile(nil, 1, 2)
	assert.Nil(t, positions)
	assert.Nil(t, result)
}

func TestReconcile_InputNotMutated(t *testing.T) {
	items := orderedItems(4)

	_, _ = Reconcile(items, 1, 4)

	for i, item := range items {
		assert.Equal(t, i+1, item.Order)
	}
}

func TestReconcile_UnsortedInput(t *testing.T) {
	items := []Item{
		{ID: 3, Order: 3},
		{ID: 1, Order: 1},
		{ID: 4, Order: 4},
		{ID: 2, Order: 2},
	}

	result, _ := Reconcile(items, 1, 3)

	got := orderByID(result)
	assert.Equal(t, 1, got[2])
	assert.Equal(t, 2, got[3])
	assert.Equal(t, 3, got[1])
	assert.Equal(t, 4, got[4])
}

func TestReconcile_PermutationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(10)
		items := orderedItems(n)
		start := 1 + rng.Intn(n)
		drop := 1 + rng.Intn(n)

		result, positions := Reconcile(items, start, drop)

		require.Len(t, result, n)
		require.Len(t, positions, n)

		// Order values are exactly {1..N}
		seen := make(map[int]bool, n)
		for _, item := range result {
			assert.False(t, seen[item.Order], "duplicate order %d (start=%d drop=%d)", item.Order, start, drop)
			seen[item.Order] = true
			assert.GreaterOrEqual(t, item.Order, 1)
			assert.LessOrEqual(t, item.Order, n)
		}

		// The dragged item now sits at the drop position
		got := orderByID(result)
		assert.Equal(t, drop, got[int64(start)], "start=%d drop=%d", start, drop)

		// Payload agrees with the in-memory result
		for _, item := range result {
			assert.Equal(t, item.Order, positions[item.ID])
		}
	}
}

func TestReconcile_ReloadFromPayloadMatches(t *testing.T) {
	items := orderedItems(6)

	result, positions := Reconcile(items, 2, 5)

	// Simulate persisting the payload and reloading the collection
	reloaded := make([]Item, 0, len(items))
	for _, item := range items {
		reloaded = append(reloaded, Item{ID: item.ID, Order: positions[item.ID]})
	}

	got := orderByID(result)
	for _, item := range reloaded {
		assert.Equal(t, got[item.ID], item.Order)
	}
}
