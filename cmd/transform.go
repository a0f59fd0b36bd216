package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var (
	rotateBy     string
	rotateTo     string
	scaleBy      string
	scaleTo      string
	resizeWidth  int
	resizeHeight int
)

var moveCmd = &cobra.Command{
	Use:   "move <dx> <dy>",
	Short: "Nudge the selected overlay by a pixel offset",
	Long: `Move the selected overlay by dx, dy pixels. Overlays may be moved
anywhere, including off-screen.

Negative offsets need "--" so they are not read as flags:
  pxo move 10 0
  pxo move -- -1 -1`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var opacityCmd = &cobra.Command{
	Use:   "opacity <0-100>",
	Short: "Set the selected overlay's opacity in percent",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpacity,
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the selected overlay",
	Long: `Rotate the selected overlay. Rotation is kept in [0, 360).

Without flags the overlay turns by rotate_step degrees (default 90).

Examples:
  pxo rotate
  pxo rotate --by -90
  pxo rotate --to 45`,
	Args: cobra.NoArgs,
	RunE: runRotate,
}

var flipCmd = &cobra.Command{
	Use:       "flip <x|y>",
	Short:     "Mirror the selected overlay horizontally (x) or vertically (y)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"x", "y"},
	RunE:      runFlip,
}

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Scale the selected overlay",
	Long: `Scale the selected overlay uniformly. Scale is kept in [0.1, 10].

Without flags the scale grows by scale_step (default 0.1).

Examples:
  pxo scale
  pxo scale --by -0.1
  pxo scale --to 0.5`,
	Args: cobra.NoArgs,
	RunE: runScale,
}

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize the selected overlay to a pixel width or height",
	Long: `Resize the selected overlay to a rendered width or height in pixels.

Scale stays uniform, so the other dimension follows the image's aspect
ratio. Nothing happens until the image's natural size is known.

Examples:
  pxo resize --width 1440
  pxo resize --height 900`,
	Args: cobra.NoArgs,
	RunE: runResize,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Toggle the aspect-ratio lock",
	Args:  cobra.NoArgs,
	RunE:  runLock,
}

func init() {
	rotateCmd.Flags().StringVar(&rotateBy, "by", "", "Rotate by this many degrees")
	rotateCmd.Flags().StringVar(&rotateTo, "to", "", "Set the rotation in degrees")
	rotateCmd.MarkFlagsMutuallyExclusive("by", "to")

	scaleCmd.Flags().StringVar(&scaleBy, "by", "", "Add this amount to the scale")
	scaleCmd.Flags().StringVar(&scaleTo, "to", "", "Set the scale")
	scaleCmd.MarkFlagsMutuallyExclusive("by", "to")

	resizeCmd.Flags().IntVar(&resizeWidth, "width", 0, "Target rendered width in pixels")
	resizeCmd.Flags().IntVar(&resizeHeight, "height", 0, "Target rendered height in pixels")
	resizeCmd.MarkFlagsMutuallyExclusive("width", "height")
	resizeCmd.MarkFlagsOneRequired("width", "height")
}

func runMove(cmd *cobra.Command, args []string) error {
	dx, err := parseInt(args[0])
	if err != nil {
		return reportIntent(err, "")
	}
	dy, err := parseInt(args[1])
	if err != nil {
		return reportIntent(err, "")
	}

	return withEngine(func(ctx context.Context, e *services.Engine) error {
		err := e.Move(dx, dy)
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return fmt.Sprintf("Moved to %dpx, %dpx", o.Position().X, o.Position().Y)
		}))
	})
}

func runOpacity(cmd *cobra.Command, args []string) error {
	v, err := parseInt(args[0])
	if err != nil {
		return reportIntent(err, "")
	}

	return withEngine(func(ctx context.Context, e *services.Engine) error {
		err := e.SetOpacity(v)
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return fmt.Sprintf("Opacity %d%%", o.Opacity())
		}))
	})
}

func runRotate(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		var err error
		switch {
		case rotateTo != "":
			var deg int
			if deg, err = parseInt(rotateTo); err == nil {
				err = e.SetRotation(deg)
			}
		case rotateBy != "":
			var deg int
			if deg, err = parseInt(rotateBy); err == nil {
				err = e.RotateBy(deg)
			}
		default:
			err = e.RotateBy(appConfig.RotateStep)
		}
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return fmt.Sprintf("Rotation %d°", o.Rotation())
		}))
	})
}

func runFlip(cmd *cobra.Command, args []string) error {
	axis, err := domain.ParseAxis(args[0])
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	return withEngine(func(ctx context.Context, e *services.Engine) error {
		err := e.Flip(axis)
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return "Flipped " + axis.String() + ", transform " + o.Transform()
		}))
	})
}

func runScale(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		var err error
		switch {
		case scaleTo != "":
			var v float64
			if v, err = parseFloat(scaleTo); err == nil {
				err = e.SetScale(v)
			}
		case scaleBy != "":
			var v float64
			if v, err = parseFloat(scaleBy); err == nil {
				err = e.ScaleBy(v)
			}
		default:
			err = e.ScaleBy(appConfig.ScaleStep)
		}
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return fmt.Sprintf("Scale %s (%s)", formatScale(o.Scale()), o.RenderedSize())
		}))
	})
}

func runResize(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		o, ok := e.Selected()
		if !ok {
			return reportIntent(domain.ErrNoSelection, "")
		}
		if !o.NaturalSize().Known() {
			e.DecodePending(ctx, imageDecoder)
			if o, _ = e.Selected(); !o.NaturalSize().Known() {
				fmt.Println(ui.FormatWarning("Image size is unknown; resize needs a raster image"))
				return nil
			}
		}

		var err error
		if cmd.Flags().Changed("width") {
			err = e.SetWidth(resizeWidth)
		} else {
			err = e.SetHeight(resizeHeight)
		}
		return reportIntent(err, selectedSummary(e, func(o domain.Overlay) string {
			return "Rendered size " + o.RenderedSize().String()
		}))
	})
}

func runLock(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		locked := e.ToggleAspectLock()
		fmt.Println(ui.FormatSuccess("Aspect ratio " + ui.FormatLock(locked)))
		return nil
	})
}

// selectedSummary formats the selected overlay after an intent
func selectedSummary(e *services.Engine, format func(o domain.Overlay) string) string {
	o, ok := e.Selected()
	if !ok {
		return ""
	}
	return o.DisplayName() + ": " + format(o)
}

// errNotFound reports a failed overlay lookup consistently
func errNotFound(err error) bool {
	return errors.Is(err, domain.ErrUnknownOverlay) || errors.Is(err, domain.ErrAmbiguousOverlay)
}
