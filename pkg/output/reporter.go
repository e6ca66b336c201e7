// Package output renders merge progress and the final summary. The
// orchestrator only talks to the Reporter interface; nothing in the core
// holds ambient print state.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

// Reporter receives progress notifications from the merge orchestrator.
// Implementations include progress-bar, plain-text and null reporters.
type Reporter interface {
	// ScanStart announces that a root is about to be walked
	ScanStart(root models.Root, path string)

	// ScanProgress reports the running count of scanned files
	ScanProgress(scanned int)

	// ScanDone closes out one root's scan
	ScanDone(scanned, failures int)

	// CopyStart announces the bulk-copy phase; alreadyDone is the number
	// of paths a previous interrupted run had completed
	CopyStart(total, alreadyDone int)

	// CopyProgress reports one more path copied
	CopyProgress()

	// CopyDone closes out the bulk-copy phase
	CopyDone()

	// Summary renders the final merge summary
	Summary(s *models.MergeSummary)
}

// WriteSummary renders the completion summary block to w
func WriteSummary(w io.Writer, s *models.MergeSummary) {
	fmt.Fprintf(w, "\nMerge completed in %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Total unique paths:     %d\n", s.TotalPaths)
	fmt.Fprintf(w, "  Only in folder 1:       %d\n", s.OnlyRoot1)
	fmt.Fprintf(w, "  Only in folder 2:       %d\n", s.OnlyRoot2)
	fmt.Fprintf(w, "  Identical in both:      %d\n", s.Identical)
	fmt.Fprintf(w, "  Conflicts resolved:     %d\n", s.Conflicts)

	if s.ErrorCount() > 0 {
		fmt.Fprintf(w, "  Errors (skipped):       %d\n", s.ErrorCount())
	}
	fmt.Fprintf(w, "  Files merged:           %d\n", s.Merged())

	const maxShown = 10

	if len(s.ScanFailures) > 0 {
		fmt.Fprintf(w, "\nScan failures (%d files skipped):\n", len(s.ScanFailures))
		for i, f := range s.ScanFailures {
			if i >= maxShown {
				fmt.Fprintf(w, "  ... and %d more\n", len(s.ScanFailures)-maxShown)
				break
			}
			fmt.Fprintf(w, "  %s: %s\n", f.RelativePath, f.Err)
		}
	}

	if len(s.CopyFailures) > 0 {
		fmt.Fprintf(w, "\nCopy failures (%d files failed):\n", len(s.CopyFailures))
		for i, f := range s.CopyFailures {
			if i >= maxShown {
				fmt.Fprintf(w, "  ... and %d more\n", len(s.CopyFailures)-maxShown)
				break
			}
			fmt.Fprintf(w, "  %s: %s\n", f.RelativePath, f.Err)
		}
	}
}

// formatBytes renders a byte count in human-readable form
func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatBytes renders a byte count in human-readable form (exported for
// the conflict prompt)
func FormatBytes(size int64) string {
	return formatBytes(size)
}
