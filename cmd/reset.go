package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every overlay from the page",
	Long: `Remove every overlay from the page and clear the selection. The
aspect lock and panel state are kept.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		count := e.Len()
		if count == 0 {
			fmt.Println(ui.FormatInfo("Nothing to reset"))
			return nil
		}

		names := make([]string, 0, count)
		for _, o := range e.List() {
			names = append(names, o.DisplayName())
		}
		fmt.Print(ui.RenderSimpleList(names))

		if !resetYes && !confirm(stdin, fmt.Sprintf("Remove all %d overlays from %s?", count, e.Key())) {
			fmt.Println("Cancelled.")
			return nil
		}

		e.ResetAll()
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Removed %d overlays", count)))
		return nil
	})
}
