package filesystem

import (
	"os"
	"path/filepath"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// MiragemDir returns the application data directory (~/.miragem), joined
// with any extra path elements.
func MiragemDir(elem ...string) string {
	parts := append([]string{UserHomeDir(), ".miragem"}, elem...)
	return filepath.Join(parts...)
}
