package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the xdg directories
const AppName = "eventchat"

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
	LogPath      string
}

// GetDefaultStoragePaths returns default storage paths using XDG base directories
func GetDefaultStoragePaths() StoragePaths {
	// runtime state lives under XDG_STATE_HOME
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, AppName, "eventchat.db"),
		LogPath:      filepath.Join(xdg.StateHome, AppName, "eventchat.log"),
	}
}

// GetConfigPaths returns the configuration file paths to check
func GetConfigPaths() ConfigPrecedence {
	return ConfigPrecedence{
		UserConfig:        filepath.Join(xdg.ConfigHome, AppName, "config"),
		ProjectConfig:     ".eventchat",
		EnvironmentPrefix: "EVENTCHAT",
	}
}
