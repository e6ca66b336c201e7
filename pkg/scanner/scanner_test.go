package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ============== HashFile Tests ==============

func TestHashFile_Format(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	hash, err := HashFile(path, 0)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if len(hash) != 16 {
		t.Errorf("hash length = %d, want 16", len(hash))
	}
	if hash != strings.ToLower(hash) {
		t.Errorf("hash %q is not lowercase", hash)
	}
	for _, r := range hash {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("hash %q contains non-hex character %q", hash, r)
		}
	}
}

func TestHashFile_ChunkSizeIndependent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Content larger than any chunk size under test, and not a multiple
	// of any of them
	content := make([]byte, 150*1024+37)
	for i := range content {
		content[i] = byte(i * 31)
	}
	path := filepath.Join(tempDir, "big.bin")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	reference, err := HashFile(path, DefaultChunkSize)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	for _, chunkSize := range []int{1024, 4096, 1 << 20, len(content) + 1} {
		hash, err := HashFile(path, chunkSize)
		if err != nil {
			t.Fatalf("HashFile(chunkSize=%d) error = %v", chunkSize, err)
		}
		if hash != reference {
			t.Errorf("HashFile(chunkSize=%d) = %s, want %s", chunkSize, hash, reference)
		}
	}
}

func TestHashFile_DifferentContent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path1 := filepath.Join(tempDir, "one.txt")
	path2 := filepath.Join(tempDir, "two.txt")
	if err := os.WriteFile(path1, []byte("content A"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(path2, []byte("content B"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	hash1, err := HashFile(path1, 0)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	hash2, err := HashFile(path2, 0)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash1 == hash2 {
		t.Errorf("different content produced identical hash %s", hash1)
	}
}

func TestHashFile_EqualContentEqualHash(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path1 := filepath.Join(tempDir, "one.txt")
	path2 := filepath.Join(tempDir, "two.txt")
	for _, p := range []string{path1, path2} {
		if err := os.WriteFile(p, []byte("same bytes"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}

	hash1, _ := HashFile(path1, 0)
	hash2, _ := HashFile(path2, 0)
	if hash1 != hash2 {
		t.Errorf("equal content produced different hashes: %s vs %s", hash1, hash2)
	}
}

func TestHashFile_MissingFile(t *testing.T) {
	_, err := HashFile("/nonexistent/path/file.txt", 0)
	if err == nil {
		t.Error("HashFile() on missing file should return an error")
	}
}

// ============== Scan Tests ==============

// buildTree writes files into root; keys are slash-separated relative paths
func buildTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		path := filepath.Join(root, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", relPath, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", relPath, err)
		}
	}
}

func TestScan_NormalizesPaths(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	buildTree(t, tempDir, map[string]string{
		"top.txt":             "top",
		"sub/nested.txt":      "nested",
		"sub/deep/bottom.txt": "bottom",
	})

	files, failures, err := Scan(context.Background(), tempDir, Options{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("failures = %d, want 0", len(failures))
	}
	if len(files) != 3 {
		t.Fatalf("scanned %d files, want 3", len(files))
	}

	for _, want := range []string{"top.txt", "sub/nested.txt", "sub/deep/bottom.txt"} {
		record, ok := files[want]
		if !ok {
			t.Errorf("missing key %q in scan result", want)
			continue
		}
		if record.RelativePath != want {
			t.Errorf("RelativePath = %q, want %q", record.RelativePath, want)
		}
		if strings.Contains(record.RelativePath, "\\") {
			t.Errorf("RelativePath %q contains backslash", record.RelativePath)
		}
		if record.Size == 0 {
			t.Errorf("Size for %q should be non-zero", want)
		}
		if len(record.Hash) != 16 {
			t.Errorf("Hash for %q = %q, want 16 hex chars", want, record.Hash)
		}
		if record.ModTime <= 0 {
			t.Errorf("ModTime for %q = %v, want > 0", want, record.ModTime)
		}
	}
}

func TestScan_EmptyRoot(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	files, failures, err := Scan(context.Background(), tempDir, Options{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 0 || len(failures) != 0 {
		t.Errorf("empty root: files = %d, failures = %d, want 0/0", len(files), len(failures))
	}
}

func TestScan_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	buildTree(t, tempDir, map[string]string{"real.txt": "real"})
	if err := os.Symlink(filepath.Join(tempDir, "real.txt"), filepath.Join(tempDir, "link.txt")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	files, _, err := Scan(context.Background(), tempDir, Options{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if _, ok := files["real.txt"]; !ok {
		t.Error("real.txt missing from scan result")
	}
	if _, ok := files["link.txt"]; ok {
		t.Error("symlink should not appear in scan result")
	}
}

func TestScan_UnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced the same way on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}

	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	buildTree(t, tempDir, map[string]string{
		"good.txt": "readable",
		"bad.txt":  "unreadable",
	})
	badPath := filepath.Join(tempDir, "bad.txt")
	if err := os.Chmod(badPath, 0000); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	defer os.Chmod(badPath, 0644)

	t.Run("skip mode records failure and continues", func(t *testing.T) {
		files, failures, err := Scan(context.Background(), tempDir, Options{Mode: SkipFailures})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if _, ok := files["good.txt"]; !ok {
			t.Error("good.txt missing from scan result")
		}
		if _, ok := files["bad.txt"]; ok {
			t.Error("unreadable file should not appear in scan result")
		}
		if len(failures) != 1 {
			t.Fatalf("failures = %d, want 1", len(failures))
		}
		if failures[0].RelativePath != "bad.txt" {
			t.Errorf("failure path = %q, want bad.txt", failures[0].RelativePath)
		}
		if failures[0].Err == "" {
			t.Error("failure should carry an error message")
		}
	})

	t.Run("fail fast aborts", func(t *testing.T) {
		_, failures, err := Scan(context.Background(), tempDir, Options{Mode: FailFast})
		if err == nil {
			t.Fatal("Scan() with FailFast should return an error")
		}
		if len(failures) == 0 {
			t.Error("the aborting failure should still be recorded")
		}
	})
}

func TestScan_MissingRoot(t *testing.T) {
	files, failures, err := Scan(context.Background(), "/nonexistent/root/dir", Options{Mode: SkipFailures})
	// The root itself being unwalkable is recorded as a failure; the scan
	// result is simply empty
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %d, want 0", len(files))
	}
	if len(failures) != 1 {
		t.Errorf("failures = %d, want 1", len(failures))
	}
}

func TestScan_Cancelled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	buildTree(t, tempDir, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = Scan(ctx, tempDir, Options{})
	if err == nil {
		t.Error("Scan() with cancelled context should return an error")
	}
}

func TestScan_OnProgress(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scanner-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	buildTree(t, tempDir, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
		"c.txt": "c",
	})

	var counts []int
	_, _, err = Scan(context.Background(), tempDir, Options{
		OnProgress: func(scanned int) { counts = append(counts, scanned) },
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(counts) != 3 {
		t.Fatalf("OnProgress called %d times, want 3", len(counts))
	}
	if counts[len(counts)-1] != 3 {
		t.Errorf("final progress count = %d, want 3", counts[len(counts)-1])
	}
}
