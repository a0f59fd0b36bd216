package domain

import (
	"math"
	"testing"
)

func newTestOverlay(t *testing.T, natural Size) *Overlay {
	t.Helper()
	o, err := NewOverlay(OverlayParams{
		ID:       "ov-1",
		ImageRef: "data:image/png;base64,AAAA",
		Opacity:  100,
		FlipX:    1,
		FlipY:    1,
		Scale:    1,
		Natural:  natural,
	})
	if err != nil {
		t.Fatalf("NewOverlay failed: %v", err)
	}
	return o
}

func TestNewOverlay_Validation(t *testing.T) {
	if _, err := NewOverlay(OverlayParams{ImageRef: "data:,x"}); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := NewOverlay(OverlayParams{ID: "a"}); err == nil {
		t.Error("expected error for empty image reference")
	}
}

func TestNewOverlay_NormalizesFields(t *testing.T) {
	o, err := NewOverlay(OverlayParams{
		ID:       "a",
		ImageRef: "data:,x",
		Opacity:  250,
		Rotation: -90,
		FlipX:    -3,
		FlipY:    0,
		Scale:    math.NaN(),
		Natural:  Size{Width: 10, Height: 0},
	})
	if err != nil {
		t.Fatalf("NewOverlay failed: %v", err)
	}

	if o.Opacity() != 100 {
		t.Errorf("Opacity = %d, want 100", o.Opacity())
	}
	if o.Rotation() != 270 {
		t.Errorf("Rotation = %d, want 270", o.Rotation())
	}
	if o.FlipX() != Negative || o.FlipY() != Positive {
		t.Errorf("Flip = (%d,%d), want (-1,1)", o.FlipX(), o.FlipY())
	}
	if o.Scale() != 1 {
		t.Errorf("Scale = %v, want 1", o.Scale())
	}
	if o.NaturalSize().Known() {
		t.Error("half-known natural size should be treated as unknown")
	}
	if o.DisplayName() != "Overlay" {
		t.Errorf("DisplayName = %q, want fallback", o.DisplayName())
	}
}

func TestOverlay_RenderedSize(t *testing.T) {
	o := newTestOverlay(t, Size{Width: 200, Height: 100})
	o.SetScale(2)

	if got := o.RenderedSize(); got != (Size{400, 200}) {
		t.Errorf("RenderedSize = %v, want 400x200", got)
	}
}

func TestOverlay_AspectRatio(t *testing.T) {
	unknown := newTestOverlay(t, Size{})
	if unknown.AspectRatio() != 1 {
		t.Errorf("AspectRatio for unknown size = %v, want 1", unknown.AspectRatio())
	}

	known := newTestOverlay(t, Size{Width: 300, Height: 150})
	if known.AspectRatio() != 2 {
		t.Errorf("AspectRatio = %v, want 2", known.AspectRatio())
	}
}

func TestOverlay_FlipIsInvolution(t *testing.T) {
	o := newTestOverlay(t, Size{})

	o.Flip(AxisX)
	if o.FlipX() != Negative {
		t.Fatalf("FlipX after one flip = %d, want -1", o.FlipX())
	}
	o.Flip(AxisX)
	if o.FlipX() != Positive {
		t.Errorf("FlipX after two flips = %d, want 1", o.FlipX())
	}
	if o.FlipY() != Positive {
		t.Errorf("FlipY changed by horizontal flips")
	}
}

func TestOverlay_ScaleByClamps(t *testing.T) {
	o := newTestOverlay(t, Size{})
	o.SetScale(0.1)
	o.ScaleBy(-0.05)

	if o.Scale() != 0.1 {
		t.Errorf("Scale = %v, want 0.1", o.Scale())
	}
}

func TestOverlay_RotateByWraps(t *testing.T) {
	o := newTestOverlay(t, Size{})
	o.RotateBy(-90)

	if o.Rotation() != 270 {
		t.Errorf("Rotation = %d, want 270", o.Rotation())
	}
}

func TestOverlay_SetNaturalSizeOnce(t *testing.T) {
	o := newTestOverlay(t, Size{})

	if o.SetNaturalSize(Size{}) {
		t.Error("zero size should not be accepted")
	}
	if !o.SetNaturalSize(Size{Width: 40, Height: 20}) {
		t.Fatal("first known size should be accepted")
	}
	if o.SetNaturalSize(Size{Width: 80, Height: 20}) {
		t.Error("second size should be ignored")
	}
	if o.NaturalSize() != (Size{40, 20}) {
		t.Errorf("NaturalSize = %v, want 40x20", o.NaturalSize())
	}
}

func TestOverlay_Transform(t *testing.T) {
	o := newTestOverlay(t, Size{})
	o.SetRotation(90)
	o.SetScale(1.5)
	o.Flip(AxisY)

	want := "rotate(90deg) scale(1.5, -1.5)"
	if got := o.Transform(); got != want {
		t.Errorf("Transform = %q, want %q", got, want)
	}

	o.SetOpacity(35)
	if o.CSSOpacity() != "0.35" {
		t.Errorf("CSSOpacity = %q, want 0.35", o.CSSOpacity())
	}
}

func TestOverlay_MoveByUnbounded(t *testing.T) {
	o := newTestOverlay(t, Size{})
	o.MoveBy(-500, 12)

	if got := o.Position(); got != (Position{X: -500, Y: 12}) {
		t.Errorf("Position = %+v, want {-500 12}", got)
	}
}
