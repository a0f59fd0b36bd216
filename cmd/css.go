package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var cssNoCopy bool

var cssCmd = &cobra.Command{
	Use:   "css [query]",
	Short: "Print the CSS that renders an overlay",
	Long: `Print the CSS rule the page uses to render an overlay and copy it to
the clipboard. Without a query the selected overlay is used.

Examples:
  pxo css
  pxo css hero --no-copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCSS,
}

func init() {
	cssCmd.Flags().BoolVar(&cssNoCopy, "no-copy", false, "Do not copy the rule to the clipboard")
}

func runCSS(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		var (
			o   domain.Overlay
			err error
		)
		if len(args) > 0 {
			o, err = e.Find(args[0])
		} else {
			var ok bool
			if o, ok = e.Selected(); !ok {
				err = domain.ErrNoSelection
			}
		}
		if err != nil {
			if errNotFound(err) {
				fmt.Println(ui.FormatWarning(err.Error()))
				return nil
			}
			return reportIntent(err, "")
		}

		rule := overlayCSS(o)
		fmt.Println(rule)

		if cssNoCopy {
			return nil
		}
		// Don't fail - headless sessions have no clipboard
		if err := clipboard.WriteAll(rule); err != nil {
			fmt.Println(ui.FormatWarning("Could not copy to clipboard: " + err.Error()))
			return nil
		}
		fmt.Println(ui.FormatSuccess("Copied to clipboard"))
		return nil
	})
}

// overlayCSS renders the absolute-positioned rule for o. Width and height
// are omitted while the natural size is unknown.
func overlayCSS(o domain.Overlay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/* %s */\n", o.DisplayName())
	fmt.Fprintf(&b, ".pxo-overlay[data-id=%q] {\n", o.ID())
	b.WriteString("  position: absolute;\n")
	fmt.Fprintf(&b, "  left: %dpx;\n", o.Position().X)
	fmt.Fprintf(&b, "  top: %dpx;\n", o.Position().Y)
	if size := o.RenderedSize(); size.Known() {
		fmt.Fprintf(&b, "  width: %dpx;\n", size.Width)
		fmt.Fprintf(&b, "  height: %dpx;\n", size.Height)
	}
	fmt.Fprintf(&b, "  opacity: %s;\n", o.CSSOpacity())
	fmt.Fprintf(&b, "  transform: %s;\n", o.Transform())
	b.WriteString("  transform-origin: center;\n")
	b.WriteString("  pointer-events: none;\n")
	b.WriteString("}")
	return b.String()
}
