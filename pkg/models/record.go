package models

import (
	"time"
)

// Root identifies one of the two source trees being merged
type Root int

const (
	// Root1 is the first source tree
	Root1 Root = 1
	// Root2 is the second source tree
	Root2 Root = 2
)

// Label returns the human-readable name of the root ("folder1" or "folder2")
func (r Root) Label() string {
	if r == Root2 {
		return "folder2"
	}
	return "folder1"
}

// Valid reports whether r is one of the two known roots
func (r Root) Valid() bool {
	return r == Root1 || r == Root2
}

// FileRecord describes one scanned regular file
type FileRecord struct {
	// RelativePath is the root-relative path, forward-slash separated
	// regardless of host OS, with no leading slash
	RelativePath string `json:"relative_path"`

	// AbsolutePath is the resolved path usable for I/O
	AbsolutePath string `json:"absolute_path"`

	// Hash is the xxhash64 content digest, 16 lowercase hex characters
	Hash string `json:"hash"`

	// Size is the byte length at scan time
	Size int64 `json:"size"`

	// ModTime is the filesystem modification time at scan time,
	// as fractional Unix seconds
	ModTime float64 `json:"modified_time"`
}

// Modified returns ModTime as a time.Time
func (r FileRecord) Modified() time.Time {
	return time.Unix(0, int64(r.ModTime*float64(time.Second)))
}

// UnixSeconds converts a time.Time to the fractional Unix seconds
// representation used by FileRecord.ModTime
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// ScanFailure records one file that could not be scanned.
// The walk continues past it; the path is simply absent from the mapping.
type ScanFailure struct {
	RelativePath string
	AbsolutePath string
	Err          string
}

// CopyFailure records one file that could not be copied into the output
// tree. The path is still marked processed; per-file I/O errors are not
// retried on resume.
type CopyFailure struct {
	RelativePath string
	SourcePath   string
	DestPath     string
	Err          string
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
