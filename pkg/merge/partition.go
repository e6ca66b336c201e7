package merge

import (
	"sort"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

// Partition classifies every relative path seen across both roots into
// exactly one of four pairwise-disjoint sets. The slices are sorted so
// that a resumed run walks paths in the same order as the run it
// continues.
type Partition struct {
	// OnlyRoot1 holds paths present only under root 1
	OnlyRoot1 []string
	// OnlyRoot2 holds paths present only under root 2
	OnlyRoot2 []string
	// Identical holds paths present under both roots with equal hashes
	Identical []string
	// Conflicting holds paths present under both roots with differing hashes
	Conflicting []string
}

// ComputePartition derives the partition from the two roots' scan
// snapshots. The union of the four sets is exactly the union of both
// mappings' key sets; no path is dropped or duplicated.
func ComputePartition(files1, files2 map[string]models.FileRecord) Partition {
	var p Partition

	for path, rec1 := range files1 {
		rec2, inBoth := files2[path]
		switch {
		case !inBoth:
			p.OnlyRoot1 = append(p.OnlyRoot1, path)
		case rec1.Hash == rec2.Hash:
			p.Identical = append(p.Identical, path)
		default:
			p.Conflicting = append(p.Conflicting, path)
		}
	}

	for path := range files2 {
		if _, inBoth := files1[path]; !inBoth {
			p.OnlyRoot2 = append(p.OnlyRoot2, path)
		}
	}

	sort.Strings(p.OnlyRoot1)
	sort.Strings(p.OnlyRoot2)
	sort.Strings(p.Identical)
	sort.Strings(p.Conflicting)

	return p
}

// Total returns the number of unique paths across both roots
func (p Partition) Total() int {
	return len(p.OnlyRoot1) + len(p.OnlyRoot2) + len(p.Identical) + len(p.Conflicting)
}

// NonConflicting returns the number of paths copied without human input
func (p Partition) NonConflicting() int {
	return len(p.OnlyRoot1) + len(p.OnlyRoot2) + len(p.Identical)
}
