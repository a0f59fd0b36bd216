package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/adapters/repository"
	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

var watchQuiet bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint a page's overlays whenever its saved state changes",
	Long: `Watch the page's snapshot file and reprint its overlays every time
another pxo process or the browser extension saves it.

Only the file store can be watched.

Use --quiet to print only the table.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress change notifications")
}

func runWatch(cmd *cobra.Command, args []string) error {
	fileStore, ok := snapshotStore.(*repository.FileSnapshotRepository)
	if !ok {
		fmt.Println(ui.FormatWarning("Watching is only supported for the file store (store: " + appConfig.Store + ")"))
		return nil
	}

	key, err := resolvePage()
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Atomic saves replace the file, so watch the directory
	if err := watcher.Add(fileStore.Dir()); err != nil {
		return fmt.Errorf("failed to watch snapshot directory: %w", err)
	}
	target := filepath.Clean(fileStore.Path(key))

	if !watchQuiet {
		fmt.Println(ui.FormatInfo("Watching " + key))
		fmt.Println(ui.FormatMuted("File: " + target))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}
	printPageState(ctx, key)

	// Debounce timer to collapse bursts of writes
	var debounceTimer *time.Timer
	debounceDuration := 200 * time.Millisecond
	refresh := func() {
		if !watchQuiet {
			fmt.Println(ui.FormatInfo("Change detected at " + time.Now().Format("15:04:05")))
		}
		printPageState(ctx, key)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, refresh)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			if !watchQuiet {
				fmt.Println()
				fmt.Println(ui.FormatMuted("Watch stopped"))
			}
			return nil
		}
	}
}

// printPageState renders the stored overlays for key without opening an
// engine, so a watcher never writes
func printPageState(ctx context.Context, key string) {
	snap, ok := snapshotService.Load(ctx, key)
	if !ok {
		fmt.Println(ui.FormatWarning("No saved state for " + key))
		return
	}

	set, _, _ := snap.Restore(domain.DefaultPlacement())
	overlays := set.List()
	if len(overlays) == 0 {
		fmt.Println(ui.FormatMuted("No overlays on " + key))
		return
	}

	fmt.Print(overlayTable(overlays, set.SelectedID()).Render())
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d overlays", len(overlays))) + "  " + ui.FormatLock(set.AspectLocked()))
	fmt.Println()
}
