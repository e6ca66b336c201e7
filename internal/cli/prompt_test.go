package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Dubrzr/folder-merger/pkg/merge"
	"github.com/Dubrzr/folder-merger/pkg/models"
)

func promptRecords() (models.FileRecord, models.FileRecord) {
	rec1 := models.FileRecord{
		RelativePath: "doc.txt",
		AbsolutePath: "/folder1/doc.txt",
		Hash:         "00000000000000aa",
		Size:         2048,
		ModTime:      1_700_000_000,
	}
	rec2 := models.FileRecord{
		RelativePath: "doc.txt",
		AbsolutePath: "/folder2/doc.txt",
		Hash:         "00000000000000bb",
		Size:         4096,
		ModTime:      1_700_000_100,
	}
	return rec1, rec2
}

func TestTerminalChannel_Choices(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  merge.Choice
	}{
		{"prefer recent", "1\n", merge.ChoosePreferRecent},
		{"prefer oldest", "2\n", merge.ChoosePreferOldest},
		{"inspect", "3\n", merge.ChooseInspect},
		{"whitespace tolerated", "  1  \n", merge.ChoosePreferRecent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			channel := NewTerminalChannel(strings.NewReader(tt.input), &out)

			rec1, rec2 := promptRecords()
			got, err := channel.Ask(context.Background(), 1, 3, rec1, rec2)
			if err != nil {
				t.Fatalf("Ask() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Ask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminalChannel_DisplaysConflict(t *testing.T) {
	var out bytes.Buffer
	channel := NewTerminalChannel(strings.NewReader("1\n"), &out)

	rec1, rec2 := promptRecords()
	if _, err := channel.Ask(context.Background(), 2, 5, rec1, rec2); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	display := out.String()
	for _, want := range []string{
		"CONFLICT [2/5]: doc.txt",
		"Folder 1 version:",
		"Folder 2 version:",
		"/folder1/doc.txt",
		"/folder2/doc.txt",
		"00000000000000aa",
		"00000000000000bb",
		"2.0 KB",
		"4.0 KB",
		"More recent: Folder 2",
		"Enter your choice (1-3):",
	} {
		if !strings.Contains(display, want) {
			t.Errorf("prompt missing %q:\n%s", want, display)
		}
	}
}

func TestTerminalChannel_MoreRecentLine(t *testing.T) {
	rec1, rec2 := promptRecords()

	tests := []struct {
		name     string
		modTime1 float64
		modTime2 float64
		want     string
	}{
		{"folder 1 newer", 200, 100, "More recent: Folder 1"},
		{"folder 2 newer", 100, 200, "More recent: Folder 2"},
		{"same time", 100, 100, "More recent: Same time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			channel := NewTerminalChannel(strings.NewReader("1\n"), &out)

			rec1.ModTime = tt.modTime1
			rec2.ModTime = tt.modTime2
			if _, err := channel.Ask(context.Background(), 1, 1, rec1, rec2); err != nil {
				t.Fatalf("Ask() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("prompt missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestTerminalChannel_InvalidInputReprompts(t *testing.T) {
	var out bytes.Buffer
	channel := NewTerminalChannel(strings.NewReader("x\n9\n2\n"), &out)

	rec1, rec2 := promptRecords()
	got, err := channel.Ask(context.Background(), 1, 1, rec1, rec2)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != merge.ChoosePreferOldest {
		t.Errorf("Ask() = %v, want ChoosePreferOldest", got)
	}

	if count := strings.Count(out.String(), "Invalid choice"); count != 2 {
		t.Errorf("invalid-choice message shown %d times, want 2", count)
	}
}

func TestTerminalChannel_EOF(t *testing.T) {
	var out bytes.Buffer
	channel := NewTerminalChannel(strings.NewReader(""), &out)

	rec1, rec2 := promptRecords()
	if _, err := channel.Ask(context.Background(), 1, 1, rec1, rec2); err == nil {
		t.Error("Ask() at EOF should return an error")
	}
}

func TestTerminalChannel_CancelledContext(t *testing.T) {
	var out bytes.Buffer
	channel := NewTerminalChannel(strings.NewReader("1\n"), &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec1, rec2 := promptRecords()
	if _, err := channel.Ask(ctx, 1, 1, rec1, rec2); err == nil {
		t.Error("Ask() with cancelled context should return an error")
	}
}
