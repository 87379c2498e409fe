// Package paths resolves panejump's config and runtime locations.
//
// Layout:
//
//	Config:  ~/.config/panejump/config.yaml   (override: PANEJUMP_CONFIG_DIR)
//	Runtime: $TMPDIR/panejump-<uid>/           (override: PANEJUMP_RUNTIME_DIR)
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	configDirOnce   sync.Once
	configDirCached string

	runtimeDirOnce   sync.Once
	runtimeDirCached string
)

// ConfigDir resolves the config directory.
// Priority: PANEJUMP_CONFIG_DIR env > ~/.config/panejump/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("PANEJUMP_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config", "panejump")
			}
		}
	})
	return configDirCached
}

// RuntimeDir resolves the directory holding sockets and pidfiles.
// Priority: PANEJUMP_RUNTIME_DIR env > $TMPDIR/panejump-<uid>/
func RuntimeDir() string {
	runtimeDirOnce.Do(func() {
		if env := os.Getenv("PANEJUMP_RUNTIME_DIR"); env != "" {
			runtimeDirCached = env
		} else {
			runtimeDirCached = filepath.Join(os.TempDir(), fmt.Sprintf("panejump-%d", os.Getuid()))
		}
	})
	return runtimeDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func sessionName(session string) string {
	if session == "" {
		return "default"
	}
	// tmux session ids look like "$3".
	return strings.NewReplacer("/", "_", "$", "").Replace(session)
}

// SocketPath returns the daemon socket path for a session.
func SocketPath(session string) string {
	return filepath.Join(RuntimeDir(), "daemon-"+sessionName(session)+".sock")
}

// PidPath returns the daemon pidfile path for a session.
func PidPath(session string) string {
	return filepath.Join(RuntimeDir(), "daemon-"+sessionName(session)+".pid")
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureRuntimeDir creates the runtime directory, readable only by the
// current user, and returns its path.
func EnsureRuntimeDir() (string, error) {
	dir := RuntimeDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	runtimeDirOnce = sync.Once{}
	runtimeDirCached = ""
}
