package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Paths are the application default locations.
type Paths struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - ATS_CONFIG_PATH: config file location (default: ~/.config/ats.toml)
//   - ATS_HOME: base directory for ats data (default: ~/.local/share/ats)
func GetDefaults() (Paths, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return Paths{}, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return Paths{}, err
	}

	return Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadEnv loads KEY=value pairs from .env files so API keys and AWS
// credentials need not live in the config. Missing files are skipped and
// variables already set in the environment win.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// EnvFiles lists the .env files LoadEnv reads: the working directory's,
// then the base directory's.
func EnvFiles(baseDir string) []string {
	return []string{".env", filepath.Join(baseDir, ".env")}
}

// getConfigPath returns the config file path, checking ATS_CONFIG_PATH env var first,
// then falling back to the default ~/.config/ats.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("ATS_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ats.toml"), nil
}

// getBaseDir returns the base directory for ats data, checking ATS_HOME env var first,
// then falling back to the XDG default ~/.local/share/ats.
func getBaseDir() (string, error) {
	if path := os.Getenv("ATS_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ats"), nil
}
