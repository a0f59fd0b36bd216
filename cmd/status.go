package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the stored state of a page",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		stored := "no"
		if snapshotService.Exists(ctx, e.Key()) {
			stored = "yes"
		}

		selected := "none"
		if o, ok := e.Selected(); ok {
			selected = ui.FormatBold(o.DisplayName())
		}

		fmt.Println(ui.FormatTitle(ui.IconPage + " " + e.Key()))
		fmt.Println()
		fmt.Println(ui.RenderKeyValue("Store", appConfig.Store))
		fmt.Println(ui.RenderKeyValue("Saved", stored))
		fmt.Println(ui.RenderKeyValue("Overlays", fmt.Sprintf("%d", e.Len())))
		fmt.Println(ui.RenderKeyValue("Selected", selected))
		fmt.Println(ui.RenderKeyValue("Aspect", ui.FormatLock(e.AspectLocked())))
		if e.Chrome().Minimized {
			fmt.Println(ui.RenderKeyValue("Panel", "minimized"))
		}
		return nil
	})
}
