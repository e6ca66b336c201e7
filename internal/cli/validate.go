package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// validateMergeArgs checks the three path arguments before any work
// begins. Both source roots must exist and be directories; the output
// must not collide with or nest inside either root.
func validateMergeArgs(folder1, folder2, outputDir string) error {
	for _, root := range []struct {
		label string
		path  string
	}{
		{"folder 1", folder1},
		{"folder 2", folder2},
	} {
		info, err := os.Stat(root.path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist: %s", root.label, root.path)
		}
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", root.label, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory: %s", root.label, root.path)
		}
	}

	if folder1 == folder2 {
		return fmt.Errorf("folder 1 and folder 2 cannot be the same: %s", folder1)
	}

	for _, root := range []string{folder1, folder2} {
		if outputDir == root {
			return fmt.Errorf("output cannot be one of the source folders: %s", root)
		}
		if strings.HasPrefix(outputDir, root+string(filepath.Separator)) {
			return fmt.Errorf("output cannot be inside a source folder: %s", root)
		}
	}

	return nil
}

// confirmOutputOverwrite asks before merging into a non-empty output
// directory. Returns true when it is safe to proceed.
func confirmOutputOverwrite(outputDir string, assumeYes bool, in io.Reader, out io.Writer) (bool, error) {
	entries, err := os.ReadDir(outputDir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read output directory: %w", err)
	}
	if len(entries) == 0 {
		return true, nil
	}

	if assumeYes {
		return true, nil
	}

	fmt.Fprintf(out, "Warning: Output folder already exists and is not empty: %s\n", outputDir)
	fmt.Fprintf(out, "Continue anyway? (y/N): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
