package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
)

var (
	showRaw   bool
	showFull  bool
	showStyle string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the page's stored snapshot as JSON",
	Long: `Print the snapshot that is persisted for the page, in the same JSON
format the browser extension stores.

Image data URIs are shortened unless --full is given.

Examples:
  pxo show
  pxo show --raw > backup.json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print without syntax highlighting")
	showCmd.Flags().BoolVar(&showFull, "full", false, "Include complete image data")
	showCmd.Flags().StringVar(&showStyle, "style", "monokai", "Highlighting style")
}

func runShow(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		snap := e.Snapshot()
		if !showFull {
			for i := range snap.Overlays {
				snap.Overlays[i].Src = abbreviateSrc(snap.Overlays[i].Src)
			}
		}

		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}

		if showRaw {
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(highlightJSON(string(data), showStyle))
		return nil
	})
}

// abbreviateSrc keeps the media type header of a data URI and drops the payload
func abbreviateSrc(src string) string {
	const keep = 48
	if len(src) <= keep {
		return src
	}
	if i := strings.IndexByte(src, ','); i >= 0 && i < keep {
		return fmt.Sprintf("%s…(%d bytes)", src[:i+1], len(src)-i-1)
	}
	return src[:keep] + "…"
}

// highlightJSON applies terminal syntax highlighting to JSON content
func highlightJSON(content, styleName string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.TTY16m

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}

	return buf.String()
}
