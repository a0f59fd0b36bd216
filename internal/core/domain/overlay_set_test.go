package domain

import (
	"errors"
	"fmt"
	"testing"
)

func newTestSet() *OverlaySet {
	s := NewOverlaySet(DefaultPlacement())
	n := 0
	s.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	return s
}

func mustAdd(t *testing.T, s *OverlaySet, name string) Overlay {
	t.Helper()
	o, err := s.Add("data:image/png;base64,AAAA", name)
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", name, err)
	}
	return o
}

func TestOverlaySet_AddDefaults(t *testing.T) {
	s := newTestSet()
	o := mustAdd(t, s, "design.png")

	if o.Position() != (Position{X: 100, Y: 100}) {
		t.Errorf("Position = %+v, want {100 100}", o.Position())
	}
	if o.Opacity() != 100 || o.Rotation() != 0 || o.Scale() != 1 {
		t.Errorf("unexpected defaults: opacity=%d rotation=%d scale=%v", o.Opacity(), o.Rotation(), o.Scale())
	}
	if o.FlipX() != Positive || o.FlipY() != Positive {
		t.Error("new overlay should not be flipped")
	}
	if s.SelectedID() != o.ID() {
		t.Errorf("SelectedID = %q, want new overlay %q", s.SelectedID(), o.ID())
	}
	if !s.AspectLocked() {
		t.Error("aspect lock should default to true")
	}
}

func TestOverlaySet_AddCascades(t *testing.T) {
	s := newTestSet()
	a := mustAdd(t, s, "same.png")
	b := mustAdd(t, s, "same.png")

	if a.Position() == b.Position() {
		t.Errorf("repeated uploads landed on the same position %+v", a.Position())
	}
	if b.Position() != (Position{X: 120, Y: 120}) {
		t.Errorf("second overlay Position = %+v, want {120 120}", b.Position())
	}
}

func TestOverlaySet_AddSkipsOccupiedSlots(t *testing.T) {
	s := newTestSet()
	a := mustAdd(t, s, "a.png")
	b := mustAdd(t, s, "b.png")
	s.Remove(a.ID())

	c := mustAdd(t, s, "c.png")
	if c.Position() == b.Position() {
		t.Fatalf("new overlay landed on %+v, already used by b", c.Position())
	}
	if c.Position() != (Position{X: 100, Y: 100}) {
		t.Errorf("Position = %+v, want the freed origin slot {100 100}", c.Position())
	}
}

func TestOverlaySet_AddNeverStacksPastCascade(t *testing.T) {
	s := newTestSet()
	seen := make(map[Position]string)
	for i := 0; i < 3*cascadeSlots+1; i++ {
		o := mustAdd(t, s, fmt.Sprintf("%d.png", i))
		if prev, ok := seen[o.Position()]; ok {
			t.Fatalf("overlay %s landed on %+v, already used by %s", o.ID(), o.Position(), prev)
		}
		seen[o.Position()] = o.ID()
	}

	eleventh := s.List()[cascadeSlots]
	if eleventh.Position() != (Position{X: 120, Y: 100}) {
		t.Errorf("first slot of the second run = %+v, want {120 100}", eleventh.Position())
	}
}

func TestOverlaySet_AddMovedOverlayFreesSlot(t *testing.T) {
	s := newTestSet()
	mustAdd(t, s, "a.png")
	s.UpdateSelected(func(o *Overlay) { o.MoveBy(500, 0) })

	if b := mustAdd(t, s, "b.png"); b.Position() != (Position{X: 100, Y: 100}) {
		t.Errorf("Position = %+v, want origin once a moved away", b.Position())
	}
}

func TestOverlaySet_GettersOnReturnedValues(t *testing.T) {
	s := newTestSet()
	mustAdd(t, s, "a.png")

	// Read-only getters must work on non-addressable values
	if got := s.List()[0].Scale(); got != 1 {
		t.Errorf("Scale = %v, want 1", got)
	}
	if got := mustAdd(t, s, "b.png").RenderedSize(); got.Known() {
		t.Errorf("RenderedSize = %s, want unknown", got)
	}
}

func TestOverlaySet_AddRejectsEmptyImage(t *testing.T) {
	s := newTestSet()
	if _, err := s.Add("", "x"); err == nil {
		t.Fatal("expected error for empty image reference")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestOverlaySet_ListPreservesOrder(t *testing.T) {
	s := newTestSet()
	names := []string{"a.png", "b.png", "c.png"}
	for _, n := range names {
		mustAdd(t, s, n)
	}

	list := s.List()
	if len(list) != len(names) {
		t.Fatalf("List len = %d, want %d", len(list), len(names))
	}
	for i, n := range names {
		if list[i].DisplayName() != n {
			t.Errorf("List[%d] = %q, want %q", i, list[i].DisplayName(), n)
		}
	}
}

func TestOverlaySet_ListIsReadOnly(t *testing.T) {
	s := newTestSet()
	mustAdd(t, s, "a.png")

	list := s.List()
	list[0].MoveBy(50, 50)

	got, _ := s.Selected()
	if got.Position() != (Position{X: 100, Y: 100}) {
		t.Errorf("mutating a listed copy changed the registry: %+v", got.Position())
	}
}

func TestOverlaySet_Remove(t *testing.T) {
	tests := []struct {
		name         string
		remove       func(a, b Overlay) string
		wantSelected func(a, b Overlay) string
		wantLen      int
	}{
		{
			name:         "remove selected clears selection",
			remove:       func(a, b Overlay) string { return b.ID() },
			wantSelected: func(a, b Overlay) string { return "" },
			wantLen:      1,
		},
		{
			name:         "remove other keeps selection",
			remove:       func(a, b Overlay) string { return a.ID() },
			wantSelected: func(a, b Overlay) string { return b.ID() },
			wantLen:      1,
		},
		{
			name:         "remove unknown is a no-op",
			remove:       func(a, b Overlay) string { return "missing" },
			wantSelected: func(a, b Overlay) string { return b.ID() },
			wantLen:      2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSet()
			a := mustAdd(t, s, "a.png")
			b := mustAdd(t, s, "b.png")

			s.Remove(tt.remove(a, b))

			if s.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", s.Len(), tt.wantLen)
			}
			if got := s.SelectedID(); got != tt.wantSelected(a, b) {
				t.Errorf("SelectedID = %q, want %q", got, tt.wantSelected(a, b))
			}
		})
	}
}

func TestOverlaySet_RemoveSelected(t *testing.T) {
	s := newTestSet()
	mustAdd(t, s, "a.png")
	b := mustAdd(t, s, "b.png")

	removed, ok := s.RemoveSelected()
	if !ok || removed.ID() != b.ID() {
		t.Fatalf("RemoveSelected = (%q, %v), want (%q, true)", removed.ID(), ok, b.ID())
	}
	if _, ok := s.RemoveSelected(); ok {
		t.Error("RemoveSelected with no selection should report false")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestOverlaySet_SelectUnknownIsNoop(t *testing.T) {
	s := newTestSet()
	a := mustAdd(t, s, "a.png")

	if s.Select("nope") {
		t.Error("Select of unknown id should report false")
	}
	if s.SelectedID() != a.ID() {
		t.Errorf("selection changed to %q", s.SelectedID())
	}
}

func TestOverlaySet_ResetAll(t *testing.T) {
	s := newTestSet()
	a := mustAdd(t, s, "a.png")
	mustAdd(t, s, "b.png")
	s.Select(a.ID())

	s.ResetAll()

	if len(s.List()) != 0 {
		t.Errorf("List after reset has %d overlays", len(s.List()))
	}
	if s.SelectedID() != "" {
		t.Errorf("SelectedID after reset = %q, want none", s.SelectedID())
	}
}

func TestOverlaySet_UpdateSelected(t *testing.T) {
	s := newTestSet()
	err := s.UpdateSelected(func(o *Overlay) { o.MoveBy(1, 1) })
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("UpdateSelected on empty set = %v, want ErrNoSelection", err)
	}

	mustAdd(t, s, "a.png")
	if err := s.UpdateSelected(func(o *Overlay) { o.MoveBy(5, -5) }); err != nil {
		t.Fatalf("UpdateSelected failed: %v", err)
	}
	got, _ := s.Selected()
	if got.Position() != (Position{X: 105, Y: 95}) {
		t.Errorf("Position = %+v, want {105 95}", got.Position())
	}
}

func TestOverlaySet_Find(t *testing.T) {
	s := newTestSet()
	mustAdd(t, s, "Homepage.png")
	mustAdd(t, s, "Header-dark.png")
	mustAdd(t, s, "Header-light.png")

	tests := []struct {
		query   string
		wantID  string
		wantErr error
	}{
		{"id-2", "id-2", nil},
		{"homepage.png", "id-1", nil},
		{"home", "id-1", nil},
		{"header-l", "id-3", nil},
		{"header", "", ErrAmbiguousOverlay},
		{"footer", "", ErrUnknownOverlay},
		{"", "", ErrUnknownOverlay},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Find(tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Find(%q) error = %v, want %v", tt.query, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find(%q) failed: %v", tt.query, err)
			}
			if got.ID() != tt.wantID {
				t.Errorf("Find(%q) = %q, want %q", tt.query, got.ID(), tt.wantID)
			}
		})
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := generateID()
		if seen[id] {
			t.Fatalf("duplicate id %q after %d ids", id, i)
		}
		seen[id] = true
	}
}
