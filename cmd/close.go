package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/pkg/ui"
)

var closeYes bool

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Deactivate the overlay tool for a page",
	Long: `Deactivate the overlay tool for a page. Every overlay is released and
the page's stored state is cleared, so the next session starts empty.`,
	Args: cobra.NoArgs,
	RunE: runClose,
}

func init() {
	closeCmd.Flags().BoolVarP(&closeYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	e, err := openEngine(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to open page"))
		return err
	}

	if e.Len() > 0 && !closeYes && !confirm(stdin, fmt.Sprintf("Close %s and discard %d overlays?", e.Key(), e.Len())) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := e.Close(ctx); err != nil {
		fmt.Println(ui.FormatError("Failed to clear stored state"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Closed " + e.Key()))
	return nil
}
