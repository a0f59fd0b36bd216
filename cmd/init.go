package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/pkg/config"
	"github.com/kamal-hamza/pxo/pkg/ui"
	"github.com/kamal-hamza/pxo/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the pxo data directory",
	Long: `Initialize the pxo data directory.

This creates the managed vault at ~/.local/share/pxo/ with the following structure:
  - snapshots/  : One saved state file per page
  - reports/    : Generated HTML reports
and writes a default config.yaml to the XDG config directory.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine vault location"))
		return err
	}
	if configFlag != "" {
		v.ConfigPath = configFlag
	}

	if v.Exists() {
		fmt.Println(ui.FormatWarning("Vault already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	fmt.Println(ui.FormatInfo("Initializing pxo vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize vault"))
		return err
	}

	// Don't fail - config is optional
	if err := createDefaultConfig(v); err != nil {
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
	}

	fmt.Println(ui.FormatSuccess("Vault initialized"))
	fmt.Println(ui.RenderKeyValue("Data", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Add your first overlay with: pxo add --page https://example.com design.png"))

	return nil
}

// createDefaultConfig writes the default config unless one already exists
func createDefaultConfig(v *vault.Vault) error {
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}
	return config.DefaultConfig().Save(v.ConfigPath)
}
