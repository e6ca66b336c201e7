// Package scanner walks one directory tree and produces a mapping from
// normalized relative path to FileRecord. Symbolic links are not followed
// (filepath.WalkDir semantics): a symlink is neither descended into nor
// hashed, so only regular files reachable without link traversal appear
// in the result.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Dubrzr/folder-merger/internal/platform"
	"github.com/Dubrzr/folder-merger/pkg/models"
)

// FailureMode controls how the scanner reacts to an unreadable file
type FailureMode int

const (
	// SkipFailures records each failure and keeps walking (default)
	SkipFailures FailureMode = iota
	// FailFast aborts on the first failure, after reporting prior ones
	FailFast
)

// Options configures a scan
type Options struct {
	// ChunkSize is the hashing read size; <= 0 means DefaultChunkSize
	ChunkSize int

	// Mode is the failure policy (SkipFailures by default)
	Mode FailureMode

	// OnProgress, if set, is called after each file is hashed with the
	// running count of scanned files
	OnProgress func(scanned int)
}

// Scan enumerates every regular file under rootPath and returns a mapping
// from slash-normalized relative path to its FileRecord, plus the list of
// per-file failures encountered. With Options.Mode == FailFast the first
// failure also yields a non-nil error; with SkipFailures the error is only
// non-nil when the walk itself cannot proceed (e.g. rootPath unreadable)
// or the context is cancelled.
//
// Scanning is read-only and does not touch the checkpoint store; the
// caller decides when a scan is persisted.
func Scan(ctx context.Context, rootPath string, opts Options) (map[string]models.FileRecord, []models.ScanFailure, error) {
	files := make(map[string]models.FileRecord)
	var failures []models.ScanFailure

	walkErr := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			relPath = path
		}
		relPath = platform.ToSlash(relPath)

		if err != nil {
			// Unreadable directory entry: record it and keep walking
			failures = append(failures, models.ScanFailure{
				RelativePath: relPath,
				AbsolutePath: path,
				Err:          err.Error(),
			})
			if opts.Mode == FailFast {
				return fmt.Errorf("scan failed at %s: %w", relPath, err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		record, recErr := fileRecord(rootPath, relPath, path, opts.ChunkSize)
		if recErr != nil {
			failures = append(failures, models.ScanFailure{
				RelativePath: relPath,
				AbsolutePath: path,
				Err:          recErr.Error(),
			})
			if opts.Mode == FailFast {
				return fmt.Errorf("scan failed at %s: %w", relPath, recErr)
			}
			return nil
		}

		files[relPath] = record
		if opts.OnProgress != nil {
			opts.OnProgress(len(files))
		}

		return nil
	})

	if walkErr != nil {
		return files, failures, walkErr
	}

	return files, failures, nil
}

// fileRecord hashes one file and captures its metadata
func fileRecord(rootPath, relPath, absPath string, chunkSize int) (models.FileRecord, error) {
	ioPath := platform.LongPath(absPath)

	info, err := os.Stat(ioPath)
	if err != nil {
		return models.FileRecord{}, err
	}

	hash, err := HashFile(ioPath, chunkSize)
	if err != nil {
		return models.FileRecord{}, err
	}

	return models.FileRecord{
		RelativePath: relPath,
		AbsolutePath: ioPath,
		Hash:         hash,
		Size:         info.Size(),
		ModTime:      models.UnixSeconds(info.ModTime()),
	}, nil
}
