package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// PanelPosition is the control panel's screen offset as CSS lengths
type PanelPosition struct {
	Left string `json:"left,omitempty"`
	Top  string `json:"top,omitempty"`
}

// PanelChrome is UI state persisted next to the overlays
type PanelChrome struct {
	Minimized bool
	Position  *PanelPosition // nil means the front end picks its default
}

// Snapshot is the durable form of one page's state. The field names match
// the storage format of the browser extension so older saves keep loading;
// every field is optional on read.
type Snapshot struct {
	Overlays          []OverlayRecord `json:"overlays"`
	SelectedOverlayID *OverlayID      `json:"selectedOverlayId,omitempty"`
	IsPanelMinimized  bool            `json:"isPanelMinimized"`
	AspectLocked      *bool           `json:"aspectLocked,omitempty"`
	PanelPosition     PanelPosition   `json:"panelPosition"`
}

// OverlayRecord is one persisted overlay. Flip state travels as the sign
// of ScaleX/ScaleY.
type OverlayRecord struct {
	ID             OverlayID `json:"id"`
	Src            string    `json:"src"`
	Name           string    `json:"name"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Opacity        *float64  `json:"opacity,omitempty"`
	Rotation       float64   `json:"rotation"`
	ScaleX         float64   `json:"scaleX"`
	ScaleY         float64   `json:"scaleY"`
	Scale          float64   `json:"scale,omitempty"`
	OriginalWidth  int       `json:"originalWidth,omitempty"`
	OriginalHeight int       `json:"originalHeight,omitempty"`
	AspectRatio    float64   `json:"aspectRatio,omitempty"`
}

// OverlayID is an overlay identifier that accepts either a JSON string or
// a JSON number when decoding
type OverlayID string

func (id *OverlayID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OverlayID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("overlay id must be a string or number: %w", err)
	}
	*id = OverlayID(n.String())
	return nil
}

// TakeSnapshot copies the set and chrome into their durable form
func TakeSnapshot(set *OverlaySet, chrome PanelChrome) Snapshot {
	locked := set.AspectLocked()
	snap := Snapshot{
		Overlays:         make([]OverlayRecord, 0, set.Len()),
		IsPanelMinimized: chrome.Minimized,
		AspectLocked:     &locked,
	}

	for _, o := range set.overlays {
		opacity := float64(o.opacity)
		natural := o.natural
		snap.Overlays = append(snap.Overlays, OverlayRecord{
			ID:             OverlayID(o.id),
			Src:            o.imageRef,
			Name:           o.displayName,
			X:              float64(o.position.X),
			Y:              float64(o.position.Y),
			Opacity:        &opacity,
			Rotation:       float64(o.rotation),
			ScaleX:         float64(o.flipX),
			ScaleY:         float64(o.flipY),
			Scale:          o.scale,
			OriginalWidth:  natural.Width,
			OriginalHeight: natural.Height,
			AspectRatio:    o.AspectRatio(),
		})
	}

	if id := set.SelectedID(); id != "" {
		sel := OverlayID(id)
		snap.SelectedOverlayID = &sel
	}
	if chrome.Position != nil {
		snap.PanelPosition = *chrome.Position
	}

	return snap
}

// Restore rebuilds a set and its chrome, applying defaults for absent
// fields. Records that cannot form a valid overlay (no id, no image, or a
// repeated id) are skipped and counted.
func (snap Snapshot) Restore(placement Placement) (*OverlaySet, PanelChrome, int) {
	set := NewOverlaySet(placement)
	overlays := make([]*Overlay, 0, len(snap.Overlays))
	seen := make(map[string]bool, len(snap.Overlays))
	skipped := 0

	for _, rec := range snap.Overlays {
		id := string(rec.ID)
		if seen[id] {
			skipped++
			continue
		}

		opacity := MaxOpacity
		if rec.Opacity != nil && IsFinite(*rec.Opacity) {
			opacity = int(math.Round(*rec.Opacity))
		}

		o, err := NewOverlay(OverlayParams{
			ID:          id,
			ImageRef:    rec.Src,
			DisplayName: rec.Name,
			Position:    Position{X: roundFinite(rec.X), Y: roundFinite(rec.Y)},
			Opacity:     opacity,
			Rotation:    roundFinite(rec.Rotation),
			FlipX:       rec.ScaleX,
			FlipY:       rec.ScaleY,
			Scale:       rec.Scale,
			Natural:     Size{Width: rec.OriginalWidth, Height: rec.OriginalHeight},
		})
		if err != nil {
			skipped++
			continue
		}

		seen[id] = true
		overlays = append(overlays, o)
	}

	locked := true
	if snap.AspectLocked != nil {
		locked = *snap.AspectLocked
	}

	selected := ""
	if snap.SelectedOverlayID != nil {
		selected = string(*snap.SelectedOverlayID)
	}

	set.restore(overlays, selected, locked)

	chrome := PanelChrome{Minimized: snap.IsPanelMinimized}
	if snap.PanelPosition.Left != "" && snap.PanelPosition.Top != "" {
		pos := snap.PanelPosition
		chrome.Position = &pos
	}

	return set, chrome, skipped
}

// roundFinite rounds v to a pixel value, mapping non-finite input to 0 and
// clamping to the int32 range so later position arithmetic cannot overflow
func roundFinite(v float64) int {
	if !IsFinite(v) {
		return 0
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Round(v))))
}
