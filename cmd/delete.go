package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete [query]",
	Aliases: []string{"rm"},
	Short:   "Delete an overlay from the page",
	Long: `Delete an overlay by id, id prefix or name. Without a query an
interactive picker opens. Deleting the selected overlay clears the
selection.

Examples:
  pxo delete hero
  pxo delete --yes 0192f3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		o, err := pickOverlay(e, args, "Delete")
		if err != nil {
			switch {
			case errors.Is(err, errCancelled):
				fmt.Println(ui.FormatInfo("Operation cancelled."))
				return nil
			case errNotFound(err):
				fmt.Println(ui.FormatWarning(err.Error()))
				return nil
			}
			return err
		}

		if !deleteYes {
			fmt.Println(ui.FormatWarning("You are about to delete:"))
			fmt.Printf("  %s %s\n", ui.StyleBold.Render(o.DisplayName()), ui.StyleMuted.Render("("+o.ID()+")"))
			fmt.Println()
			if !confirm(stdin, "Delete overlay?") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		e.Remove(o.ID())
		fmt.Println(ui.FormatSuccess("Overlay deleted."))
		return nil
	})
}
