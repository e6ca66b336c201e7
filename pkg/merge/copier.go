package merge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Dubrzr/folder-merger/internal/platform"
	"github.com/Dubrzr/folder-merger/pkg/models"
)

// copyFile copies src to dst, creating missing parent directories and
// preserving the source's modification time. Both paths are routed
// through the long-path utility so over-length paths work on every host.
func copyFile(src, dst string) error {
	srcPath := platform.LongPath(src)
	dstPath := platform.LongPath(dst)

	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy content: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize destination: %w", err)
	}

	if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}

	return nil
}

// safeCopy copies one file into the output tree and converts any error
// into a CopyFailure record instead of propagating it: a single bad file
// must not halt the merge. Returns nil on success.
func safeCopy(relPath, src, dst string) *models.CopyFailure {
	if err := copyFile(src, dst); err != nil {
		return &models.CopyFailure{
			RelativePath: relPath,
			SourcePath:   src,
			DestPath:     dst,
			Err:          err.Error(),
		}
	}
	return nil
}
