package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/Dubrzr/folder-merger/pkg/checkpoint"
	"github.com/Dubrzr/folder-merger/pkg/models"
)

// Choice is one answer from the human decision channel
type Choice int

const (
	// ChoosePreferRecent picks the record with the larger modification time
	ChoosePreferRecent Choice = iota
	// ChoosePreferOldest picks the record with the smaller modification time
	ChoosePreferOldest
	// ChooseInspect asks to open both files externally; it does not
	// resolve the conflict and the decision loop repeats
	ChooseInspect
)

// DecisionChannel obtains a human decision for one conflicting path.
// A terminal implementation prompts interactively; tests supply scripted
// answers. index and total carry the "conflict i of N" context for
// display only.
type DecisionChannel interface {
	Ask(ctx context.Context, index, total int, rec1, rec2 models.FileRecord) (Choice, error)
}

// Viewer opens a file externally for human inspection. Fire-and-forget:
// a launch failure is reported by the implementation, never propagated.
type Viewer interface {
	Open(path string)
}

// Resolver turns one ambiguous path into a deterministic, replayable
// decision. A previously logged decision is replayed without any human
// interaction; a fresh decision is persisted before Resolve returns, so
// a human is never asked twice about the same path across runs.
type Resolver struct {
	store   *checkpoint.Store
	channel DecisionChannel
	viewer  Viewer
}

// NewResolver creates a conflict resolver backed by the given store
func NewResolver(store *checkpoint.Store, channel DecisionChannel, viewer Viewer) *Resolver {
	return &Resolver{store: store, channel: channel, viewer: viewer}
}

// Resolve returns the winning record and the resolution kind for one
// conflicting path. replayed is true when the outcome came from the
// decision log rather than a fresh prompt.
//
// Ties (equal modification times) deterministically favor root 1 in both
// prefer-recent and prefer-oldest modes.
func (r *Resolver) Resolve(ctx context.Context, index, total int, rec1, rec2 models.FileRecord) (chosen models.FileRecord, kind models.ResolutionKind, replayed bool, err error) {
	prev, err := r.store.LatestDecision(rec1.RelativePath)
	if err != nil {
		return models.FileRecord{}, "", false, err
	}
	if prev != nil {
		if prev.ChosenRoot == models.Root2 {
			return rec2, prev.Kind, true, nil
		}
		return rec1, prev.Kind, true, nil
	}

	var chosenRoot models.Root
	for {
		choice, askErr := r.channel.Ask(ctx, index, total, rec1, rec2)
		if askErr != nil {
			return models.FileRecord{}, "", false, fmt.Errorf("conflict decision for %s: %w", rec1.RelativePath, askErr)
		}

		switch choice {
		case ChoosePreferRecent:
			kind = models.ResolutionPreferRecent
			if rec1.ModTime >= rec2.ModTime {
				chosen, chosenRoot = rec1, models.Root1
			} else {
				chosen, chosenRoot = rec2, models.Root2
			}

		case ChoosePreferOldest:
			kind = models.ResolutionPreferOldest
			if rec1.ModTime <= rec2.ModTime {
				chosen, chosenRoot = rec1, models.Root1
			} else {
				chosen, chosenRoot = rec2, models.Root2
			}

		case ChooseInspect:
			if r.viewer != nil {
				r.viewer.Open(rec1.AbsolutePath)
				r.viewer.Open(rec2.AbsolutePath)
			}
			continue

		default:
			return models.FileRecord{}, "", false, fmt.Errorf("unknown choice %d for %s", choice, rec1.RelativePath)
		}

		break
	}

	now := time.Now()
	decision := models.ConflictDecision{
		RelativePath: rec1.RelativePath,
		Record1:      rec1,
		Record2:      rec2,
		Kind:         kind,
		ChosenRoot:   chosenRoot,
		DecidedAt:    &now,
	}
	if err := r.store.AppendDecision(decision); err != nil {
		return models.FileRecord{}, "", false, err
	}

	return chosen, kind, false, nil
}
