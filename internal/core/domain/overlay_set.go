package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultOriginX     = 100
	DefaultOriginY     = 100
	DefaultCascadeStep = 20

	// cascadeSlots bounds how far new overlays drift from the origin
	cascadeSlots = 10
)

// Placement controls where freshly added overlays land
type Placement struct {
	Origin      Position
	CascadeStep int
}

// DefaultPlacement starts at (100,100) and steps 20px per existing overlay
func DefaultPlacement() Placement {
	return Placement{
		Origin:      Position{X: DefaultOriginX, Y: DefaultOriginY},
		CascadeStep: DefaultCascadeStep,
	}
}

// OverlaySet is the registry of overlays for one page context: the ordered
// collection, the current selection and the global aspect-lock flag.
// It is the only place overlays are created.
type OverlaySet struct {
	overlays     []*Overlay
	selectedID   string
	aspectLocked bool
	placement    Placement
	newID        func() string
}

// NewOverlaySet returns an empty set with aspect lock on
func NewOverlaySet(placement Placement) *OverlaySet {
	return &OverlaySet{
		overlays:     []*Overlay{},
		aspectLocked: true,
		placement:    placement,
		newID:        generateID,
	}
}

// SetIDGenerator replaces the id source (tests use deterministic ids)
func (s *OverlaySet) SetIDGenerator(fn func() string) {
	if fn == nil {
		fn = generateID
	}
	s.newID = fn
}

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add creates an overlay with default geometry, appends it and selects it
func (s *OverlaySet) Add(imageRef, displayName string) (Overlay, error) {
	o, err := NewOverlay(OverlayParams{
		ID:          s.newID(),
		ImageRef:    imageRef,
		DisplayName: displayName,
		Position:    s.nextPosition(),
		Opacity: MaxOpacity,
		FlipX:   1,
		FlipY:   1,
		Scale:   1,
	})
	if err != nil {
		return Overlay{}, err
	}

	s.overlays = append(s.overlays, o)
	s.selectedID = o.id
	return *o, nil
}

// nextPosition returns the first cascade slot no overlay sits on. Slots run
// diagonally from the origin; every further run of cascadeSlots is shifted
// one step right, so no two slots share a position.
func (s *OverlaySet) nextPosition() Position {
	origin, step := s.placement.Origin, s.placement.CascadeStep
	if step == 0 {
		return origin
	}

	used := make(map[Position]bool, len(s.overlays))
	for _, o := range s.overlays {
		used[o.position] = true
	}

	for slot := 0; ; slot++ {
		diag := slot % cascadeSlots
		p := Position{
			X: origin.X + (diag+slot/cascadeSlots)*step,
			Y: origin.Y + diag*step,
		}
		if !used[p] {
			return p
		}
	}
}

// Remove deletes the overlay with id and reports whether anything changed.
// Removing the selected overlay clears the selection.
func (s *OverlaySet) Remove(id string) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	s.overlays = append(s.overlays[:idx], s.overlays[idx+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	return true
}

// RemoveSelected deletes whichever overlay is selected
func (s *OverlaySet) RemoveSelected() (Overlay, bool) {
	idx := s.indexOf(s.selectedID)
	if idx < 0 {
		return Overlay{}, false
	}
	removed := *s.overlays[idx]
	s.Remove(removed.id)
	return removed, true
}

// Select makes id the selection. Unknown ids leave the selection untouched.
func (s *OverlaySet) Select(id string) bool {
	if s.indexOf(id) < 0 {
		return false
	}
	s.selectedID = id
	return true
}

// ClearSelection deselects everything
func (s *OverlaySet) ClearSelection() {
	s.selectedID = ""
}

// ResetAll drops every overlay and the selection in one step
func (s *OverlaySet) ResetAll() {
	s.overlays = []*Overlay{}
	s.selectedID = ""
}

// List returns copies of the overlays in creation order
func (s *OverlaySet) List() []Overlay {
	out := make([]Overlay, len(s.overlays))
	for i, o := range s.overlays {
		out[i] = *o
	}
	return out
}

func (s *OverlaySet) Len() int {
	return len(s.overlays)
}

// Get returns a copy of the overlay with id
func (s *OverlaySet) Get(id string) (Overlay, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Overlay{}, false
	}
	return *s.overlays[idx], true
}

// Selected returns a copy of the selected overlay
func (s *OverlaySet) Selected() (Overlay, bool) {
	return s.Get(s.selectedID)
}

func (s *OverlaySet) SelectedID() string {
	return s.selectedID
}

func (s *OverlaySet) AspectLocked() bool {
	return s.aspectLocked
}

func (s *OverlaySet) SetAspectLocked(locked bool) {
	s.aspectLocked = locked
}

// UpdateSelected applies fn to the live selected overlay
func (s *OverlaySet) UpdateSelected(fn func(o *Overlay)) error {
	idx := s.indexOf(s.selectedID)
	if idx < 0 {
		return ErrNoSelection
	}
	fn(s.overlays[idx])
	return nil
}

// Update applies fn to the live overlay with id
func (s *OverlaySet) Update(id string, fn func(o *Overlay)) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownOverlay, id)
	}
	fn(s.overlays[idx])
	return nil
}

// Find resolves a user query to one overlay. It tries, in order: exact id,
// id prefix, display name (case-insensitive), display name prefix.
func (s *OverlaySet) Find(query string) (Overlay, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Overlay{}, fmt.Errorf("%w: empty query", ErrUnknownOverlay)
	}
	if o, ok := s.Get(q); ok {
		return o, nil
	}

	lower := strings.ToLower(q)
	matchers := []func(o *Overlay) bool{
		func(o *Overlay) bool { return strings.HasPrefix(o.id, q) },
		func(o *Overlay) bool { return strings.EqualFold(o.displayName, q) },
		func(o *Overlay) bool { return strings.HasPrefix(strings.ToLower(o.displayName), lower) },
	}

	for _, match := range matchers {
		var found []*Overlay
		for _, o := range s.overlays {
			if match(o) {
				found = append(found, o)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return *found[0], nil
		default:
			return Overlay{}, fmt.Errorf("%w: %q (%d matches)", ErrAmbiguousOverlay, q, len(found))
		}
	}

	return Overlay{}, fmt.Errorf("%w: %s", ErrUnknownOverlay, q)
}

// restore replaces the contents wholesale. A selection that does not name
// a restored overlay is dropped.
func (s *OverlaySet) restore(overlays []*Overlay, selectedID string, aspectLocked bool) {
	s.overlays = overlays
	s.aspectLocked = aspectLocked
	s.selectedID = ""
	if s.indexOf(selectedID) >= 0 {
		s.selectedID = selectedID
	}
}

func (s *OverlaySet) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, o := range s.overlays {
		if o.id == id {
			return i
		}
	}
	return -1
}
