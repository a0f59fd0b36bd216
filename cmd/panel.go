package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var (
	panelMinimize bool
	panelLeft     string
	panelTop      string
	panelClear    bool
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Show or change the control panel state",
	Long: `Show or change the control panel state kept with the page.

The position is stored as CSS lengths and only applies when both left
and top are set.

Examples:
  pxo panel
  pxo panel --minimize
  pxo panel --left 24px --top 80px
  pxo panel --clear-position`,
	Args: cobra.NoArgs,
	RunE: runPanel,
}

func init() {
	panelCmd.Flags().BoolVar(&panelMinimize, "minimize", false, "Toggle the minimized state")
	panelCmd.Flags().StringVar(&panelLeft, "left", "", "Panel left offset (CSS length)")
	panelCmd.Flags().StringVar(&panelTop, "top", "", "Panel top offset (CSS length)")
	panelCmd.Flags().BoolVar(&panelClear, "clear-position", false, "Forget the panel position")
	panelCmd.MarkFlagsRequiredTogether("left", "top")
	panelCmd.MarkFlagsMutuallyExclusive("left", "clear-position")
}

func runPanel(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		if panelMinimize {
			e.ToggleMinimize()
		}
		switch {
		case panelClear:
			e.SetPanelPosition("", "")
		case panelLeft != "":
			e.SetPanelPosition(panelLeft, panelTop)
		}

		chrome := e.Chrome()
		state := "expanded"
		if chrome.Minimized {
			state = "minimized"
		}
		position := "default"
		if chrome.Position != nil {
			position = fmt.Sprintf("left %s, top %s", chrome.Position.Left, chrome.Position.Top)
		}

		fmt.Println(ui.FormatTitle("Panel"))
		fmt.Println(ui.RenderKeyValue("State", state))
		fmt.Println(ui.RenderKeyValue("Position", position))
		return nil
	})
}
