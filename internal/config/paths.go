// Package config provides configuration management for rescale-copy.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir is the standard configuration directory name
const ConfigDir = "rescale"

// ConfigFileName is the YAML file read when --config is not given
const ConfigFileName = "copy.yaml"

// getConfigDir returns the platform-appropriate config directory.
// - Windows: %APPDATA%\Rescale\Copy
// - Unix: ~/.config/rescale (XDG standard)
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Rescale", "Copy")
		}
		// Fallback to USERPROFILE if APPDATA not set
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", "Rescale", "Copy")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// GetDefaultConfigPath returns the default config file path
// - Windows: %APPDATA%\Rescale\Copy\copy.yaml
// - Unix: ~/.config/rescale/copy.yaml
func GetDefaultConfigPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return ConfigFileName
	}
	return filepath.Join(configDir, ConfigFileName)
}

// LogDirectory returns the log directory used when log_file is enabled.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\Rescale\Copy\logs
//   - Unix: ~/.config/rescale/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "rescale-copy-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "Rescale", "Copy", "logs")
	}

	// Unix: Use XDG config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "rescale-copy-logs")
		}
		return filepath.Join(homeDir, ".config", "rescale", "logs")
	}
	return filepath.Join(configDir, "rescale", "logs")
}
