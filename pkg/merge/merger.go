// Package merge implements the resumable merge engine: two tree scans, a
// four-way partition of paths, bulk copy of non-conflicting paths and
// conflict resolution, all checkpointed so that any phase can resume
// after an interruption without redoing committed work.
package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Dubrzr/folder-merger/pkg/checkpoint"
	"github.com/Dubrzr/folder-merger/pkg/logging"
	"github.com/Dubrzr/folder-merger/pkg/models"
	"github.com/Dubrzr/folder-merger/pkg/output"
	"github.com/Dubrzr/folder-merger/pkg/scanner"
)

// Config assembles a merge run. Root1, Root2 and Output must be absolute
// paths; the CLI boundary is responsible for validation and for any
// "output directory is not empty" confirmation.
type Config struct {
	Root1  string
	Root2  string
	Output string

	Store    *checkpoint.Store
	Channel  DecisionChannel
	Viewer   Viewer
	Reporter output.Reporter
	Logger   logging.Logger

	// ChunkSize is the scanner hashing read size; <= 0 means the default
	ChunkSize int

	// FailFast aborts a scan on the first unreadable file instead of
	// collecting failures
	FailFast bool
}

// Merger is the phase state machine driving a whole merge run. It owns
// all durable progress state; the checkpoint store is its sole
// persistence mechanism.
type Merger struct {
	cfg      Config
	store    *checkpoint.Store
	resolver *Resolver
	reporter output.Reporter
	logger   logging.Logger
}

// New creates a merge orchestrator. Reporter and Logger may be nil, in
// which case null implementations are used.
func New(cfg Config) *Merger {
	if cfg.Reporter == nil {
		cfg.Reporter = output.NewNullReporter()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNullLogger()
	}

	return &Merger{
		cfg:      cfg,
		store:    cfg.Store,
		resolver: NewResolver(cfg.Store, cfg.Channel, cfg.Viewer),
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
	}
}

// Run executes the merge from whatever phase the checkpoint last
// committed. On full success the checkpoint is destroyed and the summary
// returned; on any error or cancellation all durable state is left
// intact for a later resume.
func (m *Merger) Run(ctx context.Context) (*models.MergeSummary, error) {
	start := time.Now()

	phase, err := m.store.GetPhase()
	if err != nil {
		return nil, err
	}
	m.logger.Info(ctx, "merge starting", logging.Fields{
		"phase":   string(phase),
		"folder1": m.cfg.Root1,
		"folder2": m.cfg.Root2,
		"output":  m.cfg.Output,
	})

	summary := &models.MergeSummary{}

	// Phase: scanning. Roots already marked scanned are loaded from the
	// checkpoint instead; a root is never walked twice once its batch is
	// durably saved.
	files1, err := m.loadOrScan(ctx, models.Root1, m.cfg.Root1, summary)
	if err != nil {
		return nil, err
	}
	files2, err := m.loadOrScan(ctx, models.Root2, m.cfg.Root2, summary)
	if err != nil {
		return nil, err
	}

	part := ComputePartition(files1, files2)
	summary.TotalPaths = part.Total()
	summary.OnlyRoot1 = len(part.OnlyRoot1)
	summary.OnlyRoot2 = len(part.OnlyRoot2)
	summary.Identical = len(part.Identical)
	summary.Conflicts = len(part.Conflicting)

	m.logger.Info(ctx, "partition computed", logging.Fields{
		"total":       part.Total(),
		"only_1":      len(part.OnlyRoot1),
		"only_2":      len(part.OnlyRoot2),
		"identical":   len(part.Identical),
		"conflicting": len(part.Conflicting),
	})

	if err := os.MkdirAll(m.cfg.Output, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Phase: copying
	if err := m.store.SetPhase(models.PhaseCopying); err != nil {
		return nil, err
	}
	if err := m.copyNonConflicting(ctx, part, summary); err != nil {
		return nil, err
	}

	// Phase: resolving-conflicts
	if len(part.Conflicting) > 0 {
		if err := m.store.SetPhase(models.PhaseResolving); err != nil {
			return nil, err
		}
		if err := m.resolveConflicts(ctx, part, files1, files2, summary); err != nil {
			return nil, err
		}
	}

	// Phase: done. The checkpoint's only purpose was crash recovery
	// during the run, so a fully successful merge does not retain it.
	if err := m.store.SetPhase(models.PhaseDone); err != nil {
		return nil, err
	}
	if err := m.store.Destroy(); err != nil {
		return nil, fmt.Errorf("merge succeeded but checkpoint cleanup failed: %w", err)
	}

	summary.Duration = time.Since(start)
	m.logger.Info(ctx, "merge complete", logging.Fields{
		"paths":  summary.TotalPaths,
		"errors": summary.ErrorCount(),
	})
	m.reporter.Summary(summary)

	return summary, nil
}

// loadOrScan returns a root's snapshot, walking the tree only when no
// durably saved scan exists for it.
func (m *Merger) loadOrScan(ctx context.Context, root models.Root, rootPath string, summary *models.MergeSummary) (map[string]models.FileRecord, error) {
	scanned, err := m.store.IsRootScanned(root)
	if err != nil {
		return nil, err
	}

	if scanned {
		files, err := m.store.LoadScan(root)
		if err != nil {
			return nil, err
		}
		m.logger.Info(ctx, "loaded scan from checkpoint", logging.Fields{
			"root":  root.Label(),
			"files": len(files),
		})
		return files, nil
	}

	m.reporter.ScanStart(root, rootPath)

	opts := scanner.Options{
		ChunkSize:  m.cfg.ChunkSize,
		OnProgress: m.reporter.ScanProgress,
	}
	if m.cfg.FailFast {
		opts.Mode = scanner.FailFast
	}

	files, failures, err := scanner.Scan(ctx, rootPath, opts)
	summary.ScanFailures = append(summary.ScanFailures, failures...)
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", root.Label(), err)
	}

	if err := m.store.SaveScan(root, files); err != nil {
		return nil, err
	}
	if err := m.store.MarkRootScanned(root); err != nil {
		return nil, err
	}

	m.reporter.ScanDone(len(files), len(failures))
	m.logger.Info(ctx, "scan saved", logging.Fields{
		"root":     root.Label(),
		"files":    len(files),
		"failures": len(failures),
	})

	return files, nil
}

// copyNonConflicting copies every exclusive and identical path into the
// output tree, skipping paths a previous run already processed. Copy
// failures are collected, the path still marked processed; per-file I/O
// errors are not retried on resume.
func (m *Merger) copyNonConflicting(ctx context.Context, part Partition, summary *models.MergeSummary) error {
	groups := []struct {
		paths []string
		from  string
	}{
		{part.OnlyRoot1, m.cfg.Root1},
		{part.OnlyRoot2, m.cfg.Root2},
		// Identical content exists under both roots; copy from root 1
		{part.Identical, m.cfg.Root1},
	}

	alreadyDone := 0
	for _, g := range groups {
		for _, relPath := range g.paths {
			done, err := m.store.IsProcessed(relPath)
			if err != nil {
				return err
			}
			if done {
				alreadyDone++
			}
		}
	}

	m.reporter.CopyStart(part.NonConflicting(), alreadyDone)

	for _, g := range groups {
		for _, relPath := range g.paths {
			if err := ctx.Err(); err != nil {
				return err
			}

			done, err := m.store.IsProcessed(relPath)
			if err != nil {
				return err
			}
			if done {
				continue
			}

			src := filepath.Join(g.from, filepath.FromSlash(relPath))
			dst := filepath.Join(m.cfg.Output, filepath.FromSlash(relPath))
			if failure := safeCopy(relPath, src, dst); failure != nil {
				summary.CopyFailures = append(summary.CopyFailures, *failure)
				m.logger.Warn(ctx, "copy failed", logging.Fields{
					"path":  relPath,
					"error": failure.Err,
				})
			}

			if err := m.store.MarkProcessed(relPath); err != nil {
				return err
			}
			m.reporter.CopyProgress()
		}
	}

	m.reporter.CopyDone()
	return nil
}

// resolveConflicts drives the resolver over every conflicting path and
// copies each winner into the output tree. Resolution is the only part
// of the merge that can block on a human; it runs strictly after all
// non-conflicting work is complete.
func (m *Merger) resolveConflicts(ctx context.Context, part Partition, files1, files2 map[string]models.FileRecord, summary *models.MergeSummary) error {
	total := len(part.Conflicting)

	for i, relPath := range part.Conflicting {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := m.store.IsProcessed(relPath)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		chosen, kind, replayed, err := m.resolver.Resolve(ctx, i+1, total, files1[relPath], files2[relPath])
		if err != nil {
			return err
		}
		m.logger.Info(ctx, "conflict resolved", logging.Fields{
			"path":     relPath,
			"kind":     string(kind),
			"replayed": replayed,
		})

		dst := filepath.Join(m.cfg.Output, filepath.FromSlash(relPath))
		if failure := safeCopy(relPath, chosen.AbsolutePath, dst); failure != nil {
			summary.CopyFailures = append(summary.CopyFailures, *failure)
			m.logger.Warn(ctx, "copy failed", logging.Fields{
				"path":  relPath,
				"error": failure.Err,
			})
		}

		if err := m.store.MarkProcessed(relPath); err != nil {
			return err
		}
	}

	return nil
}
