// Package config resolves user-supplied configuration values, most
// importantly the database path.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves "~" and $VAR references in a configured path. The
// default database location is written as "$HOME/.local/share/...", so every
// path read from config or flags goes through here before it is opened.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
