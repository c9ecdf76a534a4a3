package tasks

import (
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// MoveItem returns a copy of items with the element at from moved to to.
//
// Elements between the two indices shift by one; all other relative orders are unchanged.
func MoveItem[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("%w: source %d of %d", shared.ErrInvalidIndex, from, n)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("%w: destination %d of %d", shared.ErrInvalidIndex, to, n)
	}

	out := append([]T(nil), items...)
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// Reconcile assigns every playlist its index as position.
//
// It returns the reconciled list and the updates for entries whose position changed.
func Reconcile(items []models.PlaylistSummary) ([]models.PlaylistSummary, []models.PositionUpdate) {
	out := make([]models.PlaylistSummary, len(items))
	var updates []models.PositionUpdate
	for i, p := range items {
		if p.Position != i {
			updates = append(updates, models.PositionUpdate{ID: p.ID, NewPosition: i})
			p.Position = i
		}
		out[i] = p
	}
	return out, updates
}

// Reorder moves the playlist at from to to and reconciles positions.
//
// items must be in rendered order.
func Reorder(items []models.PlaylistSummary, from, to int) ([]models.PlaylistSummary, []models.PositionUpdate, error) {
	moved, err := MoveItem(items, from, to)
	if err != nil {
		return nil, nil, err
	}
	out, updates := Reconcile(moved)
	return out, updates, nil
}
