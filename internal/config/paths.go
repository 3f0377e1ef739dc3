package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the per-user directory
	GlobalDirName = ".todo-mcp"
	// ConfigFileName is the config file inside GlobalDir
	ConfigFileName = "config.yaml"
)

// GlobalDir returns the per-user directory path (~/.todo-mcp)
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalDirName)
}

// DefaultPath returns the default config file path (~/.todo-mcp/config.yaml).
// Empty when the home directory cannot be resolved.
func DefaultPath() string {
	dir := GlobalDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigFileName)
}
