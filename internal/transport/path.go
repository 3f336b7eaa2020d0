package transport

import (
	"fmt"
	"path/filepath"
	"strings"
)

const fallbackRuntimeDir = "/tmp"

// RuntimeDir returns the directory emulators place their sockets in:
// XDG_RUNTIME_DIR on linux, TMPDIR on darwin, /tmp when unset.
func RuntimeDir(goos string, getenv func(string) string) (string, error) {
	var env string
	switch goos {
	case "linux":
		env = "XDG_RUNTIME_DIR"
	case "darwin":
		env = "TMPDIR"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
	if dir := strings.TrimSpace(getenv(env)); dir != "" {
		return dir, nil
	}
	return fallbackRuntimeDir, nil
}

// SocketPath builds <dir>/<target>.sock, or <dir>/<target>.sock.<slot> when
// auto is false.
func SocketPath(dir, target string, slot uint16, auto bool) string {
	name := target + ".sock"
	if !auto {
		name = fmt.Sprintf("%s.%d", name, slot)
	}
	return filepath.Join(dir, name)
}
