package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/adapters/imaging"
	"github.com/kamal-hamza/pxo/internal/adapters/repository"
	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/internal/logging"
	"github.com/kamal-hamza/pxo/pkg/config"
	"github.com/kamal-hamza/pxo/pkg/ui"
	"github.com/kamal-hamza/pxo/pkg/vault"
)

// pageEnv names the page when --page is not given
const pageEnv = "PXO_PAGE"

var (
	// Global vault instance
	appVault  *vault.Vault
	appConfig *config.Config
	appLogger *slog.Logger

	// Storage
	snapshotStore   ports.SnapshotStore
	snapshotService *services.SnapshotService
	closeStore      func() error

	// Images
	imageLoader  ports.ImageLoader
	imageDecoder ports.ImageDecoder

	// Global flags
	pageFlag   string
	configFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pxo",
	Short: "PXO - Pixel-perfect design overlays for web pages",
	Long: ui.StyleTitle.Render("PXO") + " - Pixel Overlay Tool\n\n" +
		"Lay semi-transparent design images over a live page and line them up\n" +
		"pixel by pixel. Overlays are kept per page and survive restarts.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	args, err := expandAliases(os.Args[1:], loadAliases())
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		os.Exit(1)
	}
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(opacityCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(flipCmd)
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(cssCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&pageFlag, "page", "p", "", "Page URL or key (default $"+pageEnv+" or default_page)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default is the XDG config path)")
}

// skipsInit lists commands that run without an initialized vault
func skipsInit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "version", "help", "completion":
		return true
	}
	return false
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	if skipsInit(cmd) {
		return nil
	}

	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	if configFlag != "" {
		v.ConfigPath = configFlag
	}
	appVault = v

	if !appVault.Exists() {
		fmt.Println(ui.FormatError("Vault not initialized"))
		fmt.Println(ui.FormatInfo("Run 'pxo init' to initialize the vault"))
		return errors.New("vault not initialized")
	}

	cfg, err := config.Load(appVault.ConfigPath)
	if err != nil {
		fmt.Println(ui.FormatWarning("Failed to load config, using defaults: " + err.Error()))
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)
	appLogger = logging.InitLogger(appConfig.LogLevel, appConfig.LogFormat)

	store, closer, err := newSnapshotStore(getContext(), appConfig, appVault)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to open snapshot store"))
		return err
	}
	snapshotStore = store
	closeStore = closer
	snapshotService = services.NewSnapshotService(snapshotStore, appLogger)

	imageLoader = imaging.NewFileLoader(appConfig.MaxImageBytes())
	imageDecoder = imaging.NewDataURIDecoder()

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if closeStore == nil {
		return nil
	}
	err := closeStore()
	closeStore = nil
	return err
}

// newSnapshotStore picks the backend named by the config
func newSnapshotStore(ctx context.Context, cfg *config.Config, v *vault.Vault) (ports.SnapshotStore, func() error, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSnapshotRepository(client), client.Close, nil
	default:
		return repository.NewFileSnapshotRepository(v), func() error { return nil }, nil
	}
}

// resolvePage returns the page key from --page, the environment or config
func resolvePage() (string, error) {
	raw := pageFlag
	if raw == "" {
		raw = os.Getenv(pageEnv)
	}
	if raw == "" && appConfig != nil {
		raw = appConfig.DefaultPage
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: pass --page, set %s or default_page", domain.ErrInvalidPage, pageEnv)
	}
	return domain.PageKey(raw)
}

// openEngine restores the overlay tool for the current page
func openEngine(ctx context.Context) (*services.Engine, error) {
	key, err := resolvePage()
	if err != nil {
		return nil, err
	}

	return services.OpenEngine(ctx, key, snapshotService, services.EngineOptions{
		Placement: domain.Placement{
			Origin:      domain.Position{X: appConfig.OriginX, Y: appConfig.OriginY},
			CascadeStep: appConfig.CascadeStep,
		},
		SaveDebounce: appConfig.SaveDebounce(),
		Logger:       appLogger,
	})
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
