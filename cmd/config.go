package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kamal-hamza/pxo/pkg/ui"

	"github.com/spf13/cobra"
)

var configPathOnly bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the pxo configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appVault.ConfigPath
		if configPathOnly {
			fmt.Println(path)
			return nil
		}

		// Ensure it exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := createDefaultConfig(appVault); err != nil {
				return fmt.Errorf("config file not found at %s: %w", path, err)
			}
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		c := exec.Command(editor, path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	configCmd.Flags().BoolVar(&configPathOnly, "path", false, "Print the config path instead of opening it")
}
