package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Vault is the managed data directory for pxo
type Vault struct {
	RootPath      string
	SnapshotsPath string
	ReportsPath   string
	ConfigPath    string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine vault root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt lays the vault out under rootPath with an explicit config file
func NewAt(rootPath, configPath string) *Vault {
	return &Vault{
		RootPath:      rootPath,
		SnapshotsPath: filepath.Join(rootPath, "snapshots"),
		ReportsPath:   filepath.Join(rootPath, "reports"),
		ConfigPath:    configPath,
	}
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "pxo"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "pxo"), nil
	}

	// Fall back to ~/.local/share/pxo
	return filepath.Join(homeDir, ".local", "share", "pxo"), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "pxo", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "pxo-config", "config.yaml"), nil
	}

	// Fall back to ~/.config/pxo/config.yaml
	return filepath.Join(homeDir, ".config", "pxo", "config.yaml"), nil
}

// Initialize creates the vault directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.SnapshotsPath,
		v.ReportsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetSnapshotPath returns the full path for a snapshot file
func (v *Vault) GetSnapshotPath(filename string) string {
	return filepath.Join(v.SnapshotsPath, filename)
}

// GetReportPath returns the full path for a generated report
func (v *Vault) GetReportPath(filename string) string {
	return filepath.Join(v.ReportsPath, filename)
}

// CleanReports removes all generated reports
func (v *Vault) CleanReports() error {
	entries, err := os.ReadDir(v.ReportsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read reports directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(v.ReportsPath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return nil
}
