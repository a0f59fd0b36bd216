package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	s := newTestSet()
	a := mustAdd(t, s, "a.png")
	mustAdd(t, s, "b.png")
	s.Update(a.ID(), func(o *Overlay) {
		o.MoveBy(7, -3)
		o.SetScale(2.5)
		o.Flip(AxisY)
		o.SetRotation(45)
		o.SetOpacity(60)
		o.SetNaturalSize(Size{Width: 200, Height: 100})
	})
	s.Select(a.ID())
	s.SetAspectLocked(false)

	chrome := PanelChrome{Minimized: true, Position: &PanelPosition{Left: "40px", Top: "12px"}}
	data, err := json.Marshal(TakeSnapshot(s, chrome))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	restored, restoredChrome, skipped := snap.Restore(DefaultPlacement())

	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if restored.Len() != 2 {
		t.Fatalf("restored %d overlays, want 2", restored.Len())
	}
	if restored.SelectedID() != a.ID() {
		t.Errorf("SelectedID = %q, want %q", restored.SelectedID(), a.ID())
	}
	if restored.AspectLocked() {
		t.Error("AspectLocked should round-trip as false")
	}
	if !restoredChrome.Minimized || restoredChrome.Position == nil || restoredChrome.Position.Left != "40px" {
		t.Errorf("chrome did not round-trip: %+v", restoredChrome)
	}

	orig := s.List()
	for i, got := range restored.List() {
		want := orig[i]
		if got.ID() != want.ID() || got.Position() != want.Position() || got.Scale() != want.Scale() {
			t.Errorf("overlay %d: got (%s %+v %v), want (%s %+v %v)",
				i, got.ID(), got.Position(), got.Scale(), want.ID(), want.Position(), want.Scale())
		}
		if got.Rotation() != want.Rotation() || got.FlipY() != want.FlipY() || got.Opacity() != want.Opacity() {
			t.Errorf("overlay %d: transform fields did not round-trip", i)
		}
		if got.NaturalSize() != want.NaturalSize() {
			t.Errorf("overlay %d: natural size %v, want %v", i, got.NaturalSize(), want.NaturalSize())
		}
	}
}

func TestSnapshot_MissingFieldDefaults(t *testing.T) {
	raw := `{"overlays":[{"id":1712345678901.123,"src":"data:image/png;base64,AAAA","name":"legacy.png","x":10,"y":20,"rotation":0,"scaleX":1,"scaleY":-1}]}`

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	set, chrome, skipped := snap.Restore(DefaultPlacement())

	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	o := set.List()[0]

	if o.ID() != "1712345678901.123" {
		t.Errorf("numeric id restored as %q", o.ID())
	}
	if o.Scale() != 1 {
		t.Errorf("Scale = %v, want default 1", o.Scale())
	}
	if o.Opacity() != 100 {
		t.Errorf("Opacity = %d, want default 100", o.Opacity())
	}
	if o.NaturalSize().Known() || o.AspectRatio() != 1 {
		t.Errorf("natural size should default to unknown with ratio 1, got %v / %v", o.NaturalSize(), o.AspectRatio())
	}
	if o.FlipY() != Negative {
		t.Error("FlipY should come from the sign of scaleY")
	}
	if !set.AspectLocked() {
		t.Error("AspectLocked should default to true")
	}
	if set.SelectedID() != "" {
		t.Errorf("selection should default to none, got %q", set.SelectedID())
	}
	if chrome.Minimized || chrome.Position != nil {
		t.Errorf("chrome should default to expanded with no position, got %+v", chrome)
	}
}

func TestSnapshot_DanglingSelectionDropped(t *testing.T) {
	raw := `{"overlays":[{"id":"a","src":"data:,x"}],"selectedOverlayId":"gone","panelPosition":{"left":"10px"}}`

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	set, chrome, _ := snap.Restore(DefaultPlacement())

	if set.SelectedID() != "" {
		t.Errorf("SelectedID = %q, want none", set.SelectedID())
	}
	if chrome.Position != nil {
		t.Error("a panel position needs both left and top")
	}
}

func TestSnapshot_SkipsInvalidRecords(t *testing.T) {
	raw := `{"overlays":[{"id":"a","src":""},{"id":"b","src":"data:,x"},{"id":"b","src":"data:,y"},{"src":"data:,z"}]}`

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	set, _, skipped := snap.Restore(DefaultPlacement())

	if set.Len() != 1 {
		t.Errorf("restored %d overlays, want 1", set.Len())
	}
	if skipped != 3 {
		t.Errorf("skipped = %d, want 3", skipped)
	}
}

func TestSnapshot_ClampsRestoredValues(t *testing.T) {
	raw := `{"overlays":[{"id":"a","src":"data:,x","opacity":140,"rotation":-450,"scale":25}]}`

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	set, _, _ := snap.Restore(DefaultPlacement())
	o := set.List()[0]

	if o.Opacity() != 100 || o.Rotation() != 270 || o.Scale() != 10 {
		t.Errorf("got opacity=%d rotation=%d scale=%v, want 100/270/10", o.Opacity(), o.Rotation(), o.Scale())
	}
}

func TestRoundFinite(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{12.4, 12},
		{-12.6, -13},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{1e300, math.MaxInt32},
		{-1e300, math.MinInt32},
	}

	for _, tt := range tests {
		if got := roundFinite(tt.in); got != tt.want {
			t.Errorf("roundFinite(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSnapshot_HugeCoordinatesClamped(t *testing.T) {
	var snap Snapshot
	data := `{"overlays":[{"id":"a","src":"data:,x","name":"a","x":1e300,"y":-1e300,"rotation":1e300,"scaleX":1,"scaleY":1}]}`
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		t.Fatal(err)
	}

	set, _, skipped := snap.Restore(DefaultPlacement())
	if skipped != 0 || set.Len() != 1 {
		t.Fatalf("Restore kept %d overlays, skipped %d", set.Len(), skipped)
	}
	o := set.List()[0]
	if o.Position() != (Position{X: math.MaxInt32, Y: math.MinInt32}) {
		t.Errorf("Position = %+v, want clamped to the int32 range", o.Position())
	}
	if o.Rotation() < 0 || o.Rotation() >= 360 {
		t.Errorf("Rotation = %d, want within [0, 360)", o.Rotation())
	}
}

func TestOverlayID_UnmarshalRejectsObjects(t *testing.T) {
	var id OverlayID
	if err := json.Unmarshal([]byte(`{"a":1}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}
