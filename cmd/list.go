package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var listPages bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the overlays on a page, or every stored page",
	Aliases: []string{"ls"},
	Long: `List the overlays on the current page in a table. The selected overlay
is highlighted.

Examples:
  pxo list --page https://example.com
  pxo list --pages`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listPages, "pages", false, "List every page with stored overlays")
}

func runList(cmd *cobra.Command, args []string) error {
	if listPages {
		return runListPages(cmd, args)
	}

	return withEngine(func(ctx context.Context, e *services.Engine) error {
		overlays := e.List()
		if len(overlays) == 0 {
			fmt.Println(ui.FormatWarning("No overlays on " + e.Key()))
			fmt.Println(ui.FormatInfo("Add one with: pxo add design.png"))
			return nil
		}

		fmt.Println(ui.FormatTitle("Overlays on " + e.Key()))
		fmt.Println()
		fmt.Print(overlayTable(overlays, e.SelectedID()).Render())
		fmt.Println()
		fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d overlays", len(overlays))) + "  " + ui.FormatLock(e.AspectLocked()))
		return nil
	})
}

// overlayTable builds the overlay listing with the selection highlighted
func overlayTable(overlays []domain.Overlay, selectedID string) *ui.Table {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "", Width: 1},
		{Header: "Name", Width: 24},
		{Header: "ID", Width: 8},
		{Header: "Position", Width: 12},
		{Header: "Opacity", Align: "right"},
		{Header: "Rotation", Align: "right"},
		{Header: "Flip"},
		{Header: "Scale", Align: "right"},
		{Header: "Size", Width: 11},
	})

	for i, o := range overlays {
		marker := ""
		if o.ID() == selectedID {
			marker = ui.IconSelected
			table.Highlight = i
		}
		table.AddRow([]string{
			marker,
			truncate(o.DisplayName(), 24),
			truncate(o.ID(), 8),
			fmt.Sprintf("%d, %d", o.Position().X, o.Position().Y),
			fmt.Sprintf("%d%%", o.Opacity()),
			fmt.Sprintf("%d°", o.Rotation()),
			flipLabel(o),
			formatScale(o.Scale()),
			o.RenderedSize().String(),
		})
	}
	return table
}

func flipLabel(o domain.Overlay) string {
	label := ""
	if o.FlipX() == domain.Negative {
		label += "x"
	}
	if o.FlipY() == domain.Negative {
		label += "y"
	}
	if label == "" {
		return "-"
	}
	return label
}

func runListPages(cmd *cobra.Command, args []string) error {
	summaries, err := snapshotService.Summaries(getContext())
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list pages"))
		return err
	}

	if len(summaries) == 0 {
		fmt.Println(ui.FormatWarning("No pages with stored overlays"))
		return nil
	}

	fmt.Println(ui.FormatTitle("Pages"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Page", Width: 40},
		{Header: "Overlays", Align: "right"},
	})
	for _, s := range summaries {
		table.AddRow([]string{truncate(s.Key, 60), strconv.Itoa(len(s.Overlays))})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d pages", len(summaries))))
	return nil
}
