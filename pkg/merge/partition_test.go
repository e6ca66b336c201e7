package merge

import (
	"sort"
	"testing"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

func record(relPath, hash string) models.FileRecord {
	return models.FileRecord{
		RelativePath: relPath,
		AbsolutePath: "/abs/" + relPath,
		Hash:         hash,
		Size:         1,
		ModTime:      1,
	}
}

func TestComputePartition(t *testing.T) {
	files1 := map[string]models.FileRecord{
		"only1.txt":    record("only1.txt", "00000000000000aa"),
		"same.txt":     record("same.txt", "00000000000000cc"),
		"conflict.txt": record("conflict.txt", "00000000000000dd"),
	}
	files2 := map[string]models.FileRecord{
		"only2.txt":    record("only2.txt", "00000000000000bb"),
		"same.txt":     record("same.txt", "00000000000000cc"),
		"conflict.txt": record("conflict.txt", "00000000000000ee"),
	}

	p := ComputePartition(files1, files2)

	if len(p.OnlyRoot1) != 1 || p.OnlyRoot1[0] != "only1.txt" {
		t.Errorf("OnlyRoot1 = %v, want [only1.txt]", p.OnlyRoot1)
	}
	if len(p.OnlyRoot2) != 1 || p.OnlyRoot2[0] != "only2.txt" {
		t.Errorf("OnlyRoot2 = %v, want [only2.txt]", p.OnlyRoot2)
	}
	if len(p.Identical) != 1 || p.Identical[0] != "same.txt" {
		t.Errorf("Identical = %v, want [same.txt]", p.Identical)
	}
	if len(p.Conflicting) != 1 || p.Conflicting[0] != "conflict.txt" {
		t.Errorf("Conflicting = %v, want [conflict.txt]", p.Conflicting)
	}

	if p.Total() != 4 {
		t.Errorf("Total() = %d, want 4", p.Total())
	}
	if p.NonConflicting() != 3 {
		t.Errorf("NonConflicting() = %d, want 3", p.NonConflicting())
	}
}

func TestComputePartition_Empty(t *testing.T) {
	p := ComputePartition(nil, nil)
	if p.Total() != 0 {
		t.Errorf("Total() = %d, want 0", p.Total())
	}
}

func TestComputePartition_CoversEveryPathOnce(t *testing.T) {
	files1 := map[string]models.FileRecord{
		"a": record("a", "1111111111111111"),
		"b": record("b", "2222222222222222"),
		"c": record("c", "3333333333333333"),
	}
	files2 := map[string]models.FileRecord{
		"b": record("b", "2222222222222222"),
		"c": record("c", "9999999999999999"),
		"d": record("d", "4444444444444444"),
	}

	p := ComputePartition(files1, files2)

	seen := map[string]int{}
	for _, set := range [][]string{p.OnlyRoot1, p.OnlyRoot2, p.Identical, p.Conflicting} {
		for _, path := range set {
			seen[path]++
		}
	}

	union := map[string]bool{}
	for path := range files1 {
		union[path] = true
	}
	for path := range files2 {
		union[path] = true
	}

	if len(seen) != len(union) {
		t.Errorf("partition covers %d paths, want %d", len(seen), len(union))
	}
	for path, count := range seen {
		if count != 1 {
			t.Errorf("path %q appears in %d sets, want exactly 1", path, count)
		}
		if !union[path] {
			t.Errorf("path %q not in either input", path)
		}
	}
}

func TestComputePartition_SortsSets(t *testing.T) {
	files1 := map[string]models.FileRecord{
		"z.txt": record("z.txt", "1111111111111111"),
		"a.txt": record("a.txt", "2222222222222222"),
		"m.txt": record("m.txt", "3333333333333333"),
	}

	p := ComputePartition(files1, nil)
	if !sort.StringsAreSorted(p.OnlyRoot1) {
		t.Errorf("OnlyRoot1 not sorted: %v", p.OnlyRoot1)
	}
}
