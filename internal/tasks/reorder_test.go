package tasks

import (
	"errors"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

func playlist(id string, position int) models.PlaylistSummary {
	return models.PlaylistSummary{
		ID:       id,
		Title:    "Playlist " + id,
		Position: position,
		Source:   models.FromURL("https://example.com/" + id),
	}
}

func sequence(ids ...string) []models.PlaylistSummary {
	items := make([]models.PlaylistSummary, len(ids))
	for i, id := range ids {
		items[i] = playlist(id, i)
	}
	return items
}

func order(items []models.PlaylistSummary) string {
	s := ""
	for _, p := range items {
		s += p.ID
	}
	return s
}

// applyUpdates mimics the store: apply updates, then the caller sorts by position.
func applyUpdates(items []models.PlaylistSummary, updates []models.PositionUpdate) []models.PlaylistSummary {
	out := append([]models.PlaylistSummary(nil), items...)
	for _, u := range updates {
		for i := range out {
			if out[i].ID == u.ID {
				out[i].Position = u.NewPosition
			}
		}
	}
	return out
}

func TestMoveItem(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     string
	}{
		{name: "Forward", from: 0, to: 3, want: "BCDAE"},
		{name: "Backward", from: 3, to: 0, want: "DABCE"},
		{name: "Adjacent", from: 1, to: 2, want: "ACBDE"},
		{name: "ToEnd", from: 0, to: 4, want: "BCDEA"},
		{name: "Same", from: 2, to: 2, want: "ABCDE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveItem([]string{"A", "B", "C", "D", "E"}, tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			joined := ""
			for _, s := range got {
				joined += s
			}
			if joined != tt.want {
				t.Errorf("expected %s, got %s", tt.want, joined)
			}
		})
	}

	t.Run("DoesNotModifyInput", func(t *testing.T) {
		in := []string{"A", "B", "C"}
		if _, err := MoveItem(in, 0, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if in[0] != "A" || in[2] != "C" {
			t.Errorf("input was modified: %v", in)
		}
	})

	t.Run("InvalidIndex", func(t *testing.T) {
		for _, idx := range [][2]int{{-1, 0}, {0, 5}, {5, 0}, {0, -1}} {
			if _, err := MoveItem([]string{"A", "B", "C", "D", "E"}, idx[0], idx[1]); !errors.Is(err, shared.ErrInvalidIndex) {
				t.Errorf("move %v: expected ErrInvalidIndex, got %v", idx, err)
			}
		}
	})
}

func TestReorder(t *testing.T) {
	t.Run("DragFirstToFourth", func(t *testing.T) {
		got, updates, err := Reorder(sequence("A", "B", "C", "D", "E"), 0, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order(got) != "BCDAE" {
			t.Errorf("expected BCDAE, got %s", order(got))
		}

		want := map[string]int{"B": 0, "C": 1, "D": 2, "A": 3, "E": 4}
		for _, p := range got {
			if p.Position != want[p.ID] {
				t.Errorf("expected %s at %d, got %d", p.ID, want[p.ID], p.Position)
			}
		}

		if len(updates) != 4 {
			t.Errorf("expected 4 updates (E unchanged), got %d: %+v", len(updates), updates)
		}
		for _, u := range updates {
			if u.ID == "E" {
				t.Error("expected no update for E")
			}
		}
	})

	t.Run("DensePermutationForEveryMove", func(t *testing.T) {
		const n = 5
		for from := range n {
			for to := range n {
				items := sequence("A", "B", "C", "D", "E")
				got, _, err := Reorder(items, from, to)
				if err != nil {
					t.Fatalf("move %d→%d: unexpected error: %v", from, to, err)
				}

				for i, p := range got {
					if p.Position != i {
						t.Errorf("move %d→%d: %s has position %d at index %d", from, to, p.ID, p.Position, i)
					}
				}

				moved := items[from].ID
				var rest, restGot string
				for _, p := range items {
					if p.ID != moved {
						rest += p.ID
					}
				}
				for _, p := range got {
					if p.ID != moved {
						restGot += p.ID
					}
				}
				if rest != restGot {
					t.Errorf("move %d→%d: relative order changed from %s to %s", from, to, rest, restGot)
				}
				if got[to].ID != moved {
					t.Errorf("move %d→%d: expected %s at %d, got %s", from, to, moved, to, got[to].ID)
				}
			}
		}
	})

	t.Run("InverseRestores", func(t *testing.T) {
		items := sequence("A", "B", "C", "D", "E")
		for from := range len(items) {
			for to := range len(items) {
				moved, _, err := Reorder(items, from, to)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				back, _, err := Reorder(moved, to, from)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if order(back) != order(items) {
					t.Errorf("move %d→%d and back gave %s", from, to, order(back))
				}
				for i, p := range back {
					if p.Position != items[i].Position {
						t.Errorf("move %d→%d and back: %s at %d, want %d", from, to, p.ID, p.Position, items[i].Position)
					}
				}
			}
		}
	})

	t.Run("UpdatesReproduceOrder", func(t *testing.T) {
		items := sequence("A", "B", "C", "D", "E")
		got, updates, err := Reorder(items, 4, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		applied := applyUpdates(items, updates)
		for _, p := range got {
			for _, a := range applied {
				if a.ID == p.ID && a.Position != p.Position {
					t.Errorf("%s: updates give %d, reorder gives %d", p.ID, a.Position, p.Position)
				}
			}
		}
	})

	t.Run("InvalidIndex", func(t *testing.T) {
		if _, _, err := Reorder(sequence("A", "B"), 0, 2); !errors.Is(err, shared.ErrInvalidIndex) {
			t.Errorf("expected ErrInvalidIndex, got %v", err)
		}
		if _, _, err := Reorder(nil, 0, 0); !errors.Is(err, shared.ErrInvalidIndex) {
			t.Errorf("expected ErrInvalidIndex on empty list, got %v", err)
		}
	})
}

func TestReconcile(t *testing.T) {
	t.Run("ClosesGaps", func(t *testing.T) {
		items := []models.PlaylistSummary{playlist("A", 0), playlist("B", 2), playlist("C", 7)}
		got, updates := Reconcile(items)

		if len(updates) != 2 {
			t.Fatalf("expected 2 updates, got %+v", updates)
		}
		for i, p := range got {
			if p.Position != i {
				t.Errorf("expected %s at %d, got %d", p.ID, i, p.Position)
			}
		}
	})

	t.Run("AlreadyDense", func(t *testing.T) {
		if _, updates := Reconcile(sequence("A", "B", "C")); len(updates) != 0 {
			t.Errorf("expected no updates, got %+v", updates)
		}
	})
}
