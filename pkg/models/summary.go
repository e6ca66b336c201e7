package models

import (
	"time"
)

// MergeSummary is the observational result of a completed merge.
// It is reported to the user at the end of a run and is not part of
// the durable model.
type MergeSummary struct {
	// TotalPaths is the number of unique relative paths across both roots
	TotalPaths int

	// Partition class counts
	OnlyRoot1 int
	OnlyRoot2 int
	Identical int
	Conflicts int

	// Non-fatal failures collected along the way
	ScanFailures []ScanFailure
	CopyFailures []CopyFailure

	Duration time.Duration
}

// ErrorCount returns the total number of non-fatal failures
func (s *MergeSummary) ErrorCount() int {
	return len(s.ScanFailures) + len(s.CopyFailures)
}

// Merged returns the number of paths that made it into the output tree
func (s *MergeSummary) Merged() int {
	return s.TotalPaths - s.ErrorCount()
}
