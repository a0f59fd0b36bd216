package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

// errCancelled marks a picker or prompt the user backed out of
var errCancelled = errors.New("cancelled")

// withEngine opens the page engine, runs fn and flushes pending writes
func withEngine(fn func(ctx context.Context, e *services.Engine) error) error {
	ctx := getContext()

	e, err := openEngine(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to open page"))
		return err
	}

	runErr := fn(ctx, e)
	if err := e.Flush(ctx); err != nil {
		fmt.Println(ui.FormatWarning("Changes kept in memory only: " + err.Error()))
	}
	return runErr
}

// reportIntent prints the outcome of an engine intent. Having nothing
// selected is a no-op, not a failure.
func reportIntent(err error, success string) error {
	switch {
	case err == nil:
		fmt.Println(ui.FormatSuccess(success))
		return nil
	case errors.Is(err, domain.ErrNoSelection):
		fmt.Println(ui.FormatWarning("No overlay selected"))
		fmt.Println(ui.FormatMuted("Select one with: pxo select"))
		return nil
	case errors.Is(err, domain.ErrInvalidNumber):
		fmt.Println(ui.FormatError("Value must be a finite number"))
		return err
	default:
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}
}

// pickOverlay resolves args[0] as an overlay query, or opens the fuzzy
// finder when no query is given
func pickOverlay(e *services.Engine, args []string, prompt string) (domain.Overlay, error) {
	if len(args) > 0 {
		return e.Find(args[0])
	}

	overlays := e.List()
	switch len(overlays) {
	case 0:
		return domain.Overlay{}, fmt.Errorf("%w: page has no overlays", domain.ErrUnknownOverlay)
	case 1:
		return overlays[0], nil
	}

	idx, err := fuzzyfinder.Find(
		overlays,
		func(i int) string {
			return overlays[i].DisplayName()
		},
		fuzzyfinder.WithPromptString(prompt+" > "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return describeOverlay(overlays[i], overlays[i].ID() == e.SelectedID())
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		return domain.Overlay{}, errCancelled
	}
	return overlays[idx], nil
}

// cycleSelection moves the selection through the overlays in insertion
// order, wrapping at both ends
func cycleSelection(e *services.Engine, delta int) {
	overlays := e.List()
	n := len(overlays)
	if n == 0 {
		return
	}

	current := -1
	for i := range overlays {
		if overlays[i].ID() == e.SelectedID() {
			current = i
			break
		}
	}

	next := 0
	switch {
	case current < 0 && delta < 0:
		next = n - 1
	case current >= 0:
		next = ((current+delta)%n + n) % n
	}
	e.Select(overlays[next].ID())
}

// describeOverlay renders the multi-line summary used by previews
func describeOverlay(o domain.Overlay, selected bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", o.DisplayName())
	fmt.Fprintf(&b, "ID: %s\n", o.ID())
	fmt.Fprintf(&b, "Position: %dpx, %dpx\n", o.Position().X, o.Position().Y)
	fmt.Fprintf(&b, "Opacity: %d%%\n", o.Opacity())
	fmt.Fprintf(&b, "Rotation: %d°\n", o.Rotation())
	fmt.Fprintf(&b, "Scale: %s\n", formatScale(o.Scale()))
	fmt.Fprintf(&b, "Natural: %s\n", o.NaturalSize())
	fmt.Fprintf(&b, "Rendered: %s\n", o.RenderedSize())
	fmt.Fprintf(&b, "Transform: %s", o.Transform())
	if selected {
		b.WriteString("\n\n" + ui.IconSelected + " selected")
	}
	return b.String()
}

// confirm asks a y/N question on in
func confirm(in io.Reader, prompt string) bool {
	fmt.Print(ui.StyleWarning.Render(prompt + " (y/N): "))
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// parseInt reads a whole number argument
func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidNumber, s)
	}
	return v, nil
}

// parseFloat rejects NaN and infinities along with malformed input
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidNumber, s)
	}
	return v, nil
}

// formatScale prints a scale factor without float noise
func formatScale(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// stdin is swapped in tests
var stdin io.Reader = os.Stdin
