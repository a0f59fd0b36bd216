package cmd

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show a scaled map of the page's overlays",
	Long: `Show every overlay as a box on a scaled map of the page, so stacked
or off-screen overlays are easy to spot.

Keys:
  ←↑↓→ / shift     Nudge the selected overlay
  tab / shift+tab  Cycle the selection
  + / -            Scale the selected overlay
  q / Esc          Quit`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		e.DecodePending(ctx, imageDecoder)

		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}

		v := newLayoutView(e, screen, editSteps{
			Nudge:      appConfig.NudgeStep,
			ShiftNudge: appConfig.ShiftNudgeStep,
			Scale:      appConfig.ScaleStep,
			Rotate:     appConfig.RotateStep,
		})
		return v.Run()
	})
}

// unknownExtent is the stand-in size for overlays that have not been decoded
const unknownExtent = 100

// cellRect is an overlay projected onto terminal cells
type cellRect struct {
	X, Y, W, H int
	ID         string
	Name       string
	Selected   bool
}

// projectRects fits every overlay, and the page origin, into cols x rows
// cells. A cell is treated as twice as tall as it is wide.
func projectRects(overlays []domain.Overlay, selectedID string, cols, rows int) []cellRect {
	if len(overlays) == 0 || cols <= 0 || rows <= 0 {
		return nil
	}

	minX, minY, maxX, maxY := 0, 0, 0, 0
	for i := range overlays {
		x, y, w, h := pixelBounds(overlays[i])
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x+w)
		maxY = max(maxY, y+h)
	}

	spanX := float64(max(maxX-minX, 1))
	spanY := float64(max(maxY-minY, 1))
	pxPerCol := math.Max(spanX/float64(cols), spanY/float64(rows*2))
	pxPerRow := pxPerCol * 2

	rects := make([]cellRect, 0, len(overlays))
	for i := range overlays {
		o := overlays[i]
		x, y, w, h := pixelBounds(o)

		r := cellRect{
			X:        int(float64(x-minX) / pxPerCol),
			Y:        int(float64(y-minY) / pxPerRow),
			W:        max(1, int(math.Round(float64(w)/pxPerCol))),
			H:        max(1, int(math.Round(float64(h)/pxPerRow))),
			ID:       o.ID(),
			Name:     o.DisplayName(),
			Selected: o.ID() == selectedID,
		}
		r.X = min(r.X, cols-1)
		r.Y = min(r.Y, rows-1)
		r.W = min(r.W, cols-r.X)
		r.H = min(r.H, rows-r.Y)
		rects = append(rects, r)
	}
	return rects
}

func pixelBounds(o domain.Overlay) (x, y, w, h int) {
	size := o.RenderedSize()
	if !size.Known() {
		size = domain.Size{Width: unknownExtent, Height: unknownExtent}
	}
	return o.Position().X, o.Position().Y, size.Width, size.Height
}

// LayoutView draws the overlay map on a tcell screen
type LayoutView struct {
	engine *services.Engine
	screen tcell.Screen
	steps  editSteps
	width  int
	height int
}

func newLayoutView(e *services.Engine, screen tcell.Screen, steps editSteps) *LayoutView {
	width, height := screen.Size()
	return &LayoutView{
		engine: e,
		screen: screen,
		steps:  steps,
		width:  width,
		height: height,
	}
}

// Run starts the interactive map
func (v *LayoutView) Run() error {
	defer v.screen.Fini()

	v.screen.Clear()
	v.render()

	for {
		ev := v.screen.PollEvent()

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.width, v.height = ev.Size()
			v.screen.Sync()
			v.render()

		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
			v.render()
		}
	}
}

// handleKey applies one key press and reports whether to quit
func (v *LayoutView) handleKey(ev *tcell.EventKey) bool {
	step := v.steps.Nudge
	if ev.Modifiers()&tcell.ModShift != 0 {
		step = v.steps.ShiftNudge
	}

	e := v.engine
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		e.Move(0, -step)
	case tcell.KeyDown:
		e.Move(0, step)
	case tcell.KeyLeft:
		e.Move(-step, 0)
	case tcell.KeyRight:
		e.Move(step, 0)
	case tcell.KeyTab:
		cycleSelection(e, 1)
	case tcell.KeyBacktab:
		cycleSelection(e, -1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '+', '=':
			e.ScaleBy(v.steps.Scale)
		case '-', '_':
			e.ScaleBy(-v.steps.Scale)
		}
	}
	return false
}

func (v *LayoutView) render() {
	v.screen.Clear()

	e := v.engine
	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorPurple)
	mutedStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	v.drawText(0, 0, "PXO layout", titleStyle)
	v.drawText(12, 0, fmt.Sprintf("%s │ %d overlays", e.Key(), e.Len()), mutedStyle)

	mapTop := 2
	rows := v.height - mapTop - 3
	rects := projectRects(e.List(), e.SelectedID(), v.width, rows)
	if len(rects) == 0 {
		v.drawText(0, mapTop, "No overlays on this page", mutedStyle)
	}

	// Selected last so it is drawn on top
	for _, r := range rects {
		if !r.Selected {
			v.drawBox(r, mapTop, tcell.StyleDefault.Foreground(tcell.ColorTeal))
		}
	}
	for _, r := range rects {
		if r.Selected {
			v.drawBox(r, mapTop, tcell.StyleDefault.Bold(true).Foreground(tcell.ColorPurple))
		}
	}

	footerY := v.height - 2
	v.drawText(0, footerY, strings.Repeat("─", v.width), mutedStyle)
	footerY++

	status := "nothing selected"
	if o, ok := e.Selected(); ok {
		status = fmt.Sprintf("▶ %s  %dpx, %dpx  %s", o.DisplayName(), o.Position().X, o.Position().Y, o.RenderedSize())
	}
	v.drawText(0, footerY, status+" │ ←↑↓→: Nudge │ Tab: Next │ +/-: Scale │ q/Esc: Quit", mutedStyle)

	v.screen.Show()
}

// drawBox outlines r, offset down by top rows, with its name inside
func (v *LayoutView) drawBox(r cellRect, top int, style tcell.Style) {
	x0, y0 := r.X, r.Y+top
	x1, y1 := r.X+r.W-1, r.Y+top+r.H-1

	for x := x0; x <= x1; x++ {
		v.screen.SetContent(x, y0, '─', nil, style)
		v.screen.SetContent(x, y1, '─', nil, style)
	}
	for y := y0; y <= y1; y++ {
		v.screen.SetContent(x0, y, '│', nil, style)
		v.screen.SetContent(x1, y, '│', nil, style)
	}
	if r.W > 1 && r.H > 1 {
		v.screen.SetContent(x0, y0, '┌', nil, style)
		v.screen.SetContent(x1, y0, '┐', nil, style)
		v.screen.SetContent(x0, y1, '└', nil, style)
		v.screen.SetContent(x1, y1, '┘', nil, style)
	}

	if r.W > 2 {
		label := truncate(r.Name, r.W-2)
		if r.H > 2 {
			v.drawText(x0+1, y0+1, label, style)
		} else {
			v.drawText(x0+1, y0, label, style)
		}
	}
}

// drawText draws text at the specified position
func (v *LayoutView) drawText(x, y int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		if x+i >= v.width {
			break
		}
		v.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
