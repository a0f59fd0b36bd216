package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var addCmd = &cobra.Command{
	Use:   "add <image>...",
	Short: "Add one or more design images as overlays",
	Long: `Add design images to the page as overlays.

Each image lands near the top left of the page, stepped down and right for
every overlay already there, and the last one added becomes the selection.
Files that are not jpeg, png, gif, webp, bmp or svg, or that exceed
max_image_size_mb, are skipped with a warning.

Examples:
  pxo add --page https://example.com/pricing pricing@1x.png
  pxo add hero.png footer.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		added := addImages(ctx, e, args)
		if added == 0 {
			fmt.Println(ui.FormatWarning("No overlays added"))
			return nil
		}

		fmt.Println()
		fmt.Println(ui.FormatMuted(fmt.Sprintf("Page %s now has %d overlay(s)", e.Key(), e.Len())))
		return nil
	})
}

// addImages loads, adds and sizes every path; invalid files are skipped
func addImages(ctx context.Context, e *services.Engine, paths []string) int {
	added := 0
	for _, path := range paths {
		ref, name, err := imageLoader.Load(ctx, path)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidImage) {
				fmt.Println(ui.FormatWarning("Skipped: " + err.Error()))
			} else {
				fmt.Println(ui.FormatError(fmt.Sprintf("Skipped %s: %v", filepath.Base(path), err)))
			}
			continue
		}

		o, err := e.Add(ref, name)
		if err != nil {
			fmt.Println(ui.FormatError(err.Error()))
			continue
		}
		added++

		size, err := imageDecoder.DecodeSize(ctx, ref)
		if err != nil {
			appLogger.Info("natural size unknown", "overlay", o.ID(), "error", err)
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("Added %s at %dpx, %dpx (size unknown)", name, o.Position().X, o.Position().Y)))
			continue
		}
		if err := e.ResolveNaturalSize(o.ID(), size); err != nil {
			appLogger.Warn("failed to record natural size", "overlay", o.ID(), "error", err)
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Added %s at %dpx, %dpx (%s)", name, o.Position().X, o.Position().Y, size)))
	}
	return added
}
