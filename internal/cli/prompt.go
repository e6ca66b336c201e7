package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dubrzr/folder-merger/internal/platform"
	"github.com/Dubrzr/folder-merger/pkg/merge"
	"github.com/Dubrzr/folder-merger/pkg/models"
	"github.com/Dubrzr/folder-merger/pkg/output"
)

// TerminalChannel implements merge.DecisionChannel on top of a terminal:
// it presents both versions of a conflicting path and reads the human's
// choice. Tests plug in scripted readers instead of stdin.
type TerminalChannel struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalChannel creates a decision channel reading choices from in
// and writing prompts to out
func NewTerminalChannel(in io.Reader, out io.Writer) *TerminalChannel {
	return &TerminalChannel{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask presents one conflict and blocks until the human picks a
// resolution rule. Invalid input is rejected and re-prompted; the merge
// deliberately stalls here and nowhere else.
func (c *TerminalChannel) Ask(ctx context.Context, index, total int, rec1, rec2 models.FileRecord) (merge.Choice, error) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintf(c.out, "\n%s\n", divider)
	fmt.Fprintf(c.out, "CONFLICT [%d/%d]: %s\n", index, total, rec1.RelativePath)
	fmt.Fprintf(c.out, "%s\n", divider)

	c.printVersion("Folder 1", rec1)
	c.printVersion("Folder 2", rec2)

	switch {
	case rec1.ModTime > rec2.ModTime:
		fmt.Fprintf(c.out, "\nMore recent: Folder 1\n")
	case rec2.ModTime > rec1.ModTime:
		fmt.Fprintf(c.out, "\nMore recent: Folder 2\n")
	default:
		fmt.Fprintf(c.out, "\nMore recent: Same time\n")
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		fmt.Fprintf(c.out, "\nOptions:\n")
		fmt.Fprintf(c.out, "  1: Prefer more recent file\n")
		fmt.Fprintf(c.out, "  2: Prefer oldest file\n")
		fmt.Fprintf(c.out, "  3: Open both files to inspect\n")
		fmt.Fprintf(c.out, "\nEnter your choice (1-3): ")

		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("failed to read choice: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "1":
			return merge.ChoosePreferRecent, nil
		case "2":
			return merge.ChoosePreferOldest, nil
		case "3":
			fmt.Fprintf(c.out, "\nOpening both files...\n")
			return merge.ChooseInspect, nil
		default:
			fmt.Fprintf(c.out, "Invalid choice. Please enter 1, 2, or 3.\n")
		}
	}
}

func (c *TerminalChannel) printVersion(label string, rec models.FileRecord) {
	fmt.Fprintf(c.out, "\n%s version:\n", label)
	fmt.Fprintf(c.out, "  Path: %s\n", rec.AbsolutePath)
	fmt.Fprintf(c.out, "  Modified: %s\n", formatTimestamp(rec.ModTime))
	fmt.Fprintf(c.out, "  Size: %s\n", output.FormatBytes(rec.Size))
	fmt.Fprintf(c.out, "  Hash: %s\n", rec.Hash)
}

// ExternalViewer implements merge.Viewer by launching the OS-default
// application. A launch failure is reported on the terminal, never
// propagated; the human can always open the file manually.
type ExternalViewer struct {
	out io.Writer
}

// NewExternalViewer creates a viewer reporting launch failures to out
func NewExternalViewer(out io.Writer) *ExternalViewer {
	return &ExternalViewer{out: out}
}

// Open launches the viewer for one file
func (v *ExternalViewer) Open(path string) {
	if err := platform.OpenInViewer(path); err != nil {
		fmt.Fprintf(v.out, "Could not open file: %v\n", err)
		fmt.Fprintf(v.out, "Please manually open: %s\n", path)
	}
}

// formatTimestamp renders fractional Unix seconds as a local wall-clock
// time for display
func formatTimestamp(unixSeconds float64) string {
	t := time.Unix(0, int64(unixSeconds*float64(time.Second)))
	return t.Format("2006-01-02 15:04:05")
}
