package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var selectNone bool

var selectCmd = &cobra.Command{
	Use:   "select [query]",
	Short: "Select the overlay that transform commands act on",
	Long: `Select an overlay by id, id prefix or name. Without a query an
interactive picker opens.

Examples:
  pxo select hero
  pxo select 0192f3
  pxo select --none`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().BoolVar(&selectNone, "none", false, "Clear the selection")
}

func runSelect(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		if selectNone {
			e.ClearSelection()
			fmt.Println(ui.FormatSuccess("Selection cleared"))
			return nil
		}

		o, err := pickOverlay(e, args, "Select")
		if err != nil {
			if errors.Is(err, errCancelled) {
				fmt.Println(ui.FormatInfo("Operation cancelled."))
				return nil
			}
			fmt.Println(ui.FormatWarning(err.Error()))
			return err
		}

		e.Select(o.ID())
		fmt.Println(ui.FormatSuccess("Selected " + o.DisplayName()))
		fmt.Println(ui.FormatOverlay(fmt.Sprintf("%dpx, %dpx  %s", o.Position().X, o.Position().Y, o.RenderedSize())))
		return nil
	})
}
