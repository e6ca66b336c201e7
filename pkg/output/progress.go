package output

import (
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

// scanTemplate shows a running file counter; the total is unknown while
// a walk is in progress
const scanTemplate = `{{string . "prefix"}} {{counters . }} files`

// ProgressReporter renders scan and copy progress as terminal progress
// bars and prints the summary block on completion.
type ProgressReporter struct {
	writer io.Writer
	bar    *pb.ProgressBar
}

// NewProgressReporter creates a progress-bar reporter writing to stdout
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{writer: os.Stdout}
}

// NewProgressReporterTo creates a progress-bar reporter writing to w
func NewProgressReporterTo(w io.Writer) *ProgressReporter {
	return &ProgressReporter{writer: w}
}

// ScanStart begins a counter for one root's walk
func (r *ProgressReporter) ScanStart(root models.Root, path string) {
	fmt.Fprintf(r.writer, "Scanning %s: %s\n", root.Label(), path)

	r.bar = pb.New(0)
	r.bar.SetTemplateString(scanTemplate)
	r.bar.Set("prefix", "Scanning")
	r.bar.SetWriter(r.writer)
	r.bar.Start()
}

// ScanProgress updates the scan counter
func (r *ProgressReporter) ScanProgress(scanned int) {
	if r.bar != nil {
		r.bar.SetCurrent(int64(scanned))
	}
}

// ScanDone finishes the scan counter for one root
func (r *ProgressReporter) ScanDone(scanned, failures int) {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
	if failures > 0 {
		fmt.Fprintf(r.writer, "  Warning: %d files could not be scanned\n", failures)
	}
	fmt.Fprintf(r.writer, "  %d files scanned\n", scanned)
}

// CopyStart begins the bulk-copy bar, pre-advanced past work a previous
// run already completed
func (r *ProgressReporter) CopyStart(total, alreadyDone int) {
	if alreadyDone > 0 {
		fmt.Fprintf(r.writer, "%d files already copied, %d remaining\n",
			alreadyDone, total-alreadyDone)
	}

	r.bar = pb.New(total)
	r.bar.SetCurrent(int64(alreadyDone))
	r.bar.SetWriter(r.writer)
	r.bar.Start()
}

// CopyProgress advances the bulk-copy bar by one file
func (r *ProgressReporter) CopyProgress() {
	if r.bar != nil {
		r.bar.Increment()
	}
}

// CopyDone finishes the bulk-copy bar
func (r *ProgressReporter) CopyDone() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

// Summary renders the completion summary
func (r *ProgressReporter) Summary(s *models.MergeSummary) {
	WriteSummary(r.writer, s)
}
