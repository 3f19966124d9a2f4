// Package settings locates per-user data for sahaj.
//
// Everything lives in the XDG data directory:
//
//	$XDG_DATA_HOME/sahaj/  (default: ~/.local/share/sahaj/)
//	  prompts.json         system prompt overrides
//
// Credentials are never written here; they come from the environment or
// the command line for the lifetime of one process.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

const dataDirName = "sahaj"

// PromptsFileName is the prompt override file inside the data directory.
const PromptsFileName = "prompts.json"

// dataDir returns the XDG data directory for sahaj.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// DataDir returns the sahaj data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// PromptsFilePath returns the path to the prompt override file.
func PromptsFilePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PromptsFileName), nil
}

// MaskKey returns a masked version of an API key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
