package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Overlay is one positioned, transformable image laid over a page.
// Identity, image and name are fixed at construction; everything else is
// mutated through methods that keep the geometry invariants.
type Overlay struct {
	id          string
	imageRef    string
	displayName string

	position Position
	opacity  int
	rotation int
	flipX    Sign
	flipY    Sign
	scale    float64
	natural  Size
}

// OverlayParams carries the fields needed to build an Overlay.
// FlipX/FlipY only contribute their sign; a zero Scale means 1.
type OverlayParams struct {
	ID          string
	ImageRef    string
	DisplayName string
	Position    Position
	Opacity     int
	Rotation    int
	FlipX       float64
	FlipY       float64
	Scale       float64
	Natural     Size
}

// NewOverlay validates params and returns an Overlay with every field
// normalized into its legal range
func NewOverlay(p OverlayParams) (*Overlay, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("overlay id cannot be empty")
	}
	if strings.TrimSpace(p.ImageRef) == "" {
		return nil, fmt.Errorf("overlay %s: image reference cannot be empty", p.ID)
	}
	if !IsFinite(p.Scale) || p.Scale == 0 {
		p.Scale = 1
	}

	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = "Overlay"
	}

	natural := p.Natural
	if !natural.Known() {
		natural = Size{}
	}

	return &Overlay{
		id:          p.ID,
		imageRef:    p.ImageRef,
		displayName: name,
		position:    p.Position,
		opacity:     ClampOpacity(p.Opacity),
		rotation:    NormalizeRotation(p.Rotation),
		flipX:       normalizeSign(p.FlipX),
		flipY:       normalizeSign(p.FlipY),
		scale:       ClampScale(p.Scale),
		natural:     natural,
	}, nil
}

func (o Overlay) ID() string          { return o.id }
func (o Overlay) ImageRef() string    { return o.imageRef }
func (o Overlay) DisplayName() string { return o.displayName }
func (o Overlay) Position() Position  { return o.position }
func (o Overlay) Opacity() int        { return o.opacity }
func (o Overlay) Rotation() int       { return o.rotation }
func (o Overlay) FlipX() Sign         { return o.flipX }
func (o Overlay) FlipY() Sign         { return o.flipY }
func (o Overlay) Scale() float64      { return o.scale }
func (o Overlay) NaturalSize() Size   { return o.natural }

// AspectRatio is naturalWidth/naturalHeight, or 1 while the size is unknown
func (o Overlay) AspectRatio() float64 {
	if !o.natural.Known() {
		return 1
	}
	return float64(o.natural.Width) / float64(o.natural.Height)
}

// RenderedSize is the natural size times the current scale
func (o Overlay) RenderedSize() Size {
	return ScaledSize(o.natural, o.scale)
}

// Transform returns the CSS-equivalent transform for the host renderer
func (o Overlay) Transform() string {
	sx := float64(o.flipX) * o.scale
	sy := float64(o.flipY) * o.scale
	return fmt.Sprintf("rotate(%ddeg) scale(%s, %s)", o.rotation, formatFloat(sx), formatFloat(sy))
}

// CSSOpacity is the opacity as a 0..1 CSS value
func (o Overlay) CSSOpacity() string {
	return formatFloat(float64(o.opacity) / 100)
}

// MoveBy shifts the position; no page-edge clamping
func (o *Overlay) MoveBy(dx, dy int) {
	o.position.X += dx
	o.position.Y += dy
}

func (o *Overlay) SetOpacity(v int) {
	o.opacity = ClampOpacity(v)
}

func (o *Overlay) SetRotation(deg int) {
	o.rotation = NormalizeRotation(deg)
}

func (o *Overlay) RotateBy(delta int) {
	o.rotation = NormalizeRotation(o.rotation + delta)
}

// Flip toggles the sign on one axis; two flips on the same axis cancel
func (o *Overlay) Flip(axis Axis) {
	if axis == AxisY {
		o.flipY = o.flipY.Toggle()
		return
	}
	o.flipX = o.flipX.Toggle()
}

func (o *Overlay) SetScale(v float64) {
	o.scale = ClampScale(v)
}

func (o *Overlay) ScaleBy(delta float64) {
	o.scale = ClampScale(o.scale + delta)
}

// SetNaturalSize records the decoded image size once. It returns false when
// the size is not usable or was already known.
func (o *Overlay) SetNaturalSize(s Size) bool {
	if !s.Known() || o.natural.Known() {
		return false
	}
	o.natural = s
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
