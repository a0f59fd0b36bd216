package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var (
	reportOutput string
	reportOpen   bool
	reportClean  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an HTML report of every stored page",
	Long: `Write an HTML report with charts of every page that has stored
overlays: where each overlay sits and how many each page carries.

Reports are written to the vault's reports/ directory unless --output is
given.

Examples:
  pxo report --open
  pxo report -o overlays.html
  pxo report --clean`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to this file")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "Open the report when done")
	reportCmd.Flags().BoolVar(&reportClean, "clean", false, "Delete previously generated reports first")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if reportClean {
		if err := appVault.CleanReports(); err != nil {
			fmt.Println(ui.FormatWarning("Failed to clean reports: " + err.Error()))
		}
	}

	summaries, err := snapshotService.Summaries(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to load pages"))
		return err
	}
	if len(summaries) == 0 {
		fmt.Println(ui.FormatWarning("No pages with stored overlays"))
		return nil
	}

	path := reportOutput
	if path == "" {
		path = appVault.GetReportPath("report-" + time.Now().Format("20060102-150405") + ".html")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := renderReport(f, appConfig.ReportTitle, summaries); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Report written for %d pages", len(summaries))))
	fmt.Println(ui.FormatMuted("Location: " + path))

	if reportOpen {
		if err := openFile(path); err != nil {
			fmt.Println(ui.FormatWarning("Failed to open report: " + err.Error()))
			fmt.Println(ui.FormatInfo("You can manually open: " + path))
		}
	}
	return nil
}

// renderReport writes the chart page for summaries to w
func renderReport(w io.Writer, title string, summaries []services.PageSummary) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		positionChart(title, summaries),
		countChart(summaries),
	)
	return page.Render(w)
}

// positionChart plots each overlay's top-left corner, one series per page
func positionChart(title string, summaries []services.PageSummary) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Overlay positions (px from the page's top left)",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "value"}),
	)

	for _, s := range summaries {
		points := make([]opts.ScatterData, 0, len(s.Overlays))
		for i := range s.Overlays {
			o := s.Overlays[i]
			points = append(points, opts.ScatterData{
				Name:  o.DisplayName(),
				Value: []interface{}{o.Position().X, o.Position().Y},
			})
		}
		scatter.AddSeries(s.Key, points)
	}
	return scatter
}

// countChart compares how many overlays each page carries
func countChart(summaries []services.PageSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Overlays per page"}),
	)

	pages := make([]string, 0, len(summaries))
	counts := make([]opts.BarData, 0, len(summaries))
	for _, s := range summaries {
		pages = append(pages, s.Key)
		counts = append(counts, opts.BarData{Value: len(s.Overlays)})
	}

	bar.SetXAxis(pages).AddSeries("Overlays", counts)
	return bar
}

// openFile opens a file with the system's default application
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	return cmd.Run()
}
