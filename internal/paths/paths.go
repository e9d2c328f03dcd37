package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "pkger"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Name of the image-state cache file, under the OS cache directory (§6, §9).
	StateFileName = "state.json"

	// Name of the user configuration file, under the config directory (§6).
	ConfigFileName = ".pkger.yml"
)

// ConfigDir returns the directory pkger looks for its configuration file in.
//
//	Linux: $XDG_CONFIG_HOME/pkger
//	macOS: ~/Library/Application Support/pkger
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigFile returns the default path to .pkger.yml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// CacheDir returns the directory pkger persists its image-state cache in.
//
//	Linux: $XDG_CACHE_HOME/pkger
//	macOS: ~/Library/Caches/pkger
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// StateFile returns the path to the persistent ImageState cache file (C9).
func StateFile() string {
	return filepath.Join(CacheDir(), StateFileName)
}
