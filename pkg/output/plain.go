package output

import (
	"fmt"
	"io"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

// PlainReporter prints phase milestones without progress bars. Used when
// stdout is not a terminal or progress display is disabled.
type PlainReporter struct {
	writer io.Writer
}

// NewPlainReporter creates a reporter writing plain lines to w
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{writer: w}
}

// ScanStart announces one root's walk
func (r *PlainReporter) ScanStart(root models.Root, path string) {
	fmt.Fprintf(r.writer, "Scanning %s: %s\n", root.Label(), path)
}

// ScanProgress is silent in plain mode
func (r *PlainReporter) ScanProgress(scanned int) {}

// ScanDone reports one root's scan result
func (r *PlainReporter) ScanDone(scanned, failures int) {
	if failures > 0 {
		fmt.Fprintf(r.writer, "  Warning: %d files could not be scanned\n", failures)
	}
	fmt.Fprintf(r.writer, "  %d files scanned\n", scanned)
}

// CopyStart announces the bulk-copy phase
func (r *PlainReporter) CopyStart(total, alreadyDone int) {
	if alreadyDone > 0 {
		fmt.Fprintf(r.writer, "Copying: %d files already copied, %d remaining\n",
			alreadyDone, total-alreadyDone)
		return
	}
	fmt.Fprintf(r.writer, "Copying %d files\n", total)
}

// CopyProgress is silent in plain mode
func (r *PlainReporter) CopyProgress() {}

// CopyDone is silent in plain mode
func (r *PlainReporter) CopyDone() {}

// Summary renders the completion summary
func (r *PlainReporter) Summary(s *models.MergeSummary) {
	WriteSummary(r.writer, s)
}

// NullReporter discards all progress notifications.
// Used by tests and quiet mode.
type NullReporter struct{}

// NewNullReporter creates a reporter that discards everything
func NewNullReporter() *NullReporter {
	return &NullReporter{}
}

// ScanStart does nothing
func (r *NullReporter) ScanStart(root models.Root, path string) {}

// ScanProgress does nothing
func (r *NullReporter) ScanProgress(scanned int) {}

// ScanDone does nothing
func (r *NullReporter) ScanDone(scanned, failures int) {}

// CopyStart does nothing
func (r *NullReporter) CopyStart(total, alreadyDone int) {}

// CopyProgress does nothing
func (r *NullReporter) CopyProgress() {}

// CopyDone does nothing
func (r *NullReporter) CopyDone() {}

// Summary does nothing
func (r *NullReporter) Summary(s *models.MergeSummary) {}
