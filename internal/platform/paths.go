package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// longPathPrefix is the Windows extended-length path prefix. Paths carrying
// it bypass the 260-character MAX_PATH limit in the Win32 API.
const longPathPrefix = `\\?\`

// LongPath returns a path safe to hand to the OS for I/O even when it
// exceeds the host's maximum path length. On Windows the path is made
// absolute and given the \\?\ extended-length prefix; everywhere else the
// path is returned cleaned. This is the single place where the long-path
// workaround lives; the scanner and the copier both route through it.
func LongPath(path string) string {
	if runtime.GOOS != "windows" {
		return filepath.Clean(path)
	}

	if strings.HasPrefix(path, longPathPrefix) {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	// UNC paths use the \\?\UNC\host\share form
	if IsUNCPath(abs) {
		return longPathPrefix + `UNC` + strings.TrimPrefix(abs, `\`)
	}

	return longPathPrefix + abs
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// ToSlash normalizes a relative path to forward-slash form. Checkpoint
// keys and partition membership use this form so they stay stable across
// operating systems.
func ToSlash(relPath string) string {
	return filepath.ToSlash(relPath)
}
