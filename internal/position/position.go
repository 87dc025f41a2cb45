// Package position assigns integer ordering keys to items within a bucket.
// Keys are handed out with gaps so that an item can be inserted between two
// neighbors without renumbering the rest of the bucket; only when a gap is
// exhausted does the caller renumber the whole bucket.
package position

import (
	"errors"

	"github.com/google/uuid"
)

// Gap is the default spacing between freshly assigned keys.
const Gap = 1024

var (
	// ErrInvalidOrdering means the caller passed neighbors that are not in
	// order (before >= after). This is a caller bug, never retried.
	ErrInvalidOrdering = errors.New("position: neighbor keys out of order")

	// ErrNoRoom means no integer fits strictly between the neighbors; the
	// caller must renumber the bucket and recompute.
	ErrNoRoom = errors.New("position: no room between neighbor keys")
)

// KeyBetween returns a key strictly between before and after. A nil neighbor
// means the edge of the bucket: nil before yields a key below after with
// headroom, nil after a key above before. Both nil yields zero (empty bucket).
func KeyBetween(before, after *int) (int, error) {
	switch {
	case before == nil && after == nil:
		return 0, nil
	case before == nil:
		return *after - Gap, nil
	case after == nil:
		return *before + Gap, nil
	}

	if *before >= *after {
		return 0, ErrInvalidOrdering
	}
	if *after-*before < 2 {
		return 0, ErrNoRoom
	}
	return *before + (*after-*before)/2, nil
}

// Renumber reassigns evenly spaced keys preserving the given order. The ids
// slice is the bucket's items in their current relative order.
func Renumber(ids []uuid.UUID) map[uuid.UUID]int {
	keys := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		keys[id] = (i + 1) * Gap
	}
	return keys
}
