package models

import (
	"time"
)

// ResolutionKind is the rule used to pick a winner for a conflicting path
type ResolutionKind string

const (
	// ResolutionPreferRecent picks the record with the larger modification time
	ResolutionPreferRecent ResolutionKind = "prefer_recent"
	// ResolutionPreferOldest picks the record with the smaller modification time
	ResolutionPreferOldest ResolutionKind = "prefer_oldest"
	// ResolutionPending marks a conflict that was seen but not decided.
	// Pending records are audit trail only and never govern replay.
	ResolutionPending ResolutionKind = "pending"
)

// Decided reports whether the kind represents a final decision
func (k ResolutionKind) Decided() bool {
	return k == ResolutionPreferRecent || k == ResolutionPreferOldest
}

// ConflictDecision is one append-only record in the conflict log.
// Both contending records are snapshotted, not referenced, so the log
// stays meaningful even after the scan snapshots are destroyed.
type ConflictDecision struct {
	RelativePath string
	Record1      FileRecord
	Record2      FileRecord
	Kind         ResolutionKind
	ChosenRoot   Root
	DecidedAt    *time.Time
}

// Chosen returns the winning record according to ChosenRoot
func (d ConflictDecision) Chosen() FileRecord {
	if d.ChosenRoot == Root2 {
		return d.Record2
	}
	return d.Record1
}
