// Package checkpoint persists merge progress in a SQLite database so an
// interrupted merge can resume without re-hashing, re-copying or re-asking
// anything already committed. Every mutating call commits before it
// returns; a crash immediately after a call never loses that call.
package checkpoint

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Dubrzr/folder-merger/pkg/models"
)

// ErrLocked is returned by Open when another process holds the
// checkpoint. Two concurrent merges sharing one checkpoint location is a
// usage error, not a supported mode.
var ErrLocked = errors.New("checkpoint is in use by another process")

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS scanned_files (
	root          INTEGER NOT NULL,
	relative_path TEXT    NOT NULL,
	absolute_path TEXT    NOT NULL,
	hash          TEXT    NOT NULL,
	size          INTEGER NOT NULL,
	modified_time REAL    NOT NULL,
	PRIMARY KEY (root, relative_path)
);

CREATE TABLE IF NOT EXISTS processed_files (
	relative_path TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS conflicts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	relative_path TEXT NOT NULL,
	record1       TEXT NOT NULL,
	record2       TEXT NOT NULL,
	resolution    TEXT NOT NULL,
	chosen_root   INTEGER NOT NULL,
	decided_at    TEXT
);
`

// Remove deletes the checkpoint database files at path without opening
// them. Used by --reset to discard a previous run before starting fresh.
// Removing a location that holds no state is not an error.
func Remove(path string) error {
	for _, suffix := range []string{"", "-wal", "-shm", ".lock"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove checkpoint file: %w", err)
		}
	}
	return nil
}

// Store is a durable checkpoint database opened against a single on-disk
// location. It holds per-root scan snapshots, the processed-path set, the
// current phase marker and the append-only conflict decision log.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open opens (or creates) the checkpoint database at path and takes an
// exclusive lock on the location. It is safe to reopen a database left
// behind by an unclean shutdown.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock checkpoint: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	// WAL keeps the database consistent across crashes; synchronous=FULL
	// makes each committed transaction survive power loss, which is what
	// the durability contract requires.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			lock.Unlock()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("failed to initialize checkpoint schema: %w", err)
	}

	return &Store{db: db, path: path, lock: lock}, nil
}

// Path returns the checkpoint database file path
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection and the location lock.
// Safe to call after Destroy.
func (s *Store) Close() error {
	var firstErr error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			firstErr = err
		}
		s.db = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.lock = nil
	}
	return firstErr
}

// GetMetadata returns the value stored under key, or def when unset
func (s *Store) GetMetadata(key, def string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %q: %w", key, err)
	}
	return value, nil
}

// SetMetadata durably stores value under key
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write metadata %q: %w", key, err)
	}
	return nil
}

// EnsureRunID returns the identifier of the merge run this checkpoint
// belongs to, generating and persisting one on first call. A resumed run
// therefore reports the same ID as the run it continues.
func (s *Store) EnsureRunID() (string, error) {
	id, err := s.GetMetadata("run_id", "")
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := s.SetMetadata("run_id", id); err != nil {
		return "", err
	}
	return id, nil
}

// IsRootScanned reports whether a root's scan was durably saved
func (s *Store) IsRootScanned(root models.Root) (bool, error) {
	value, err := s.GetMetadata(rootScannedKey(root), "")
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// MarkRootScanned records that a root's scan batch is complete
func (s *Store) MarkRootScanned(root models.Root) error {
	return s.SetMetadata(rootScannedKey(root), "true")
}

func rootScannedKey(root models.Root) string {
	return fmt.Sprintf("root%d_scanned", root)
}

// SaveScan persists a root's full scan snapshot in a single transaction:
// either every record in the batch becomes durable or none do. Any
// previous snapshot for the root is replaced as part of the same
// transaction.
func (s *Store) SaveScan(root models.Root, files map[string]models.FileRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin scan batch: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM scanned_files WHERE root = ?", root); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO scanned_files
			(root, relative_path, absolute_path, hash, size, modified_time)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare scan insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range files {
		if record.RelativePath == "" {
			return fmt.Errorf("refusing to save record with empty relative path (%s)", record.AbsolutePath)
		}
		_, err := stmt.Exec(
			root, record.RelativePath, record.AbsolutePath,
			record.Hash, record.Size, record.ModTime,
		)
		if err != nil {
			return fmt.Errorf("failed to save record %s: %w", record.RelativePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan batch: %w", err)
	}
	return nil
}

// LoadScan returns the snapshot written by the last successful SaveScan
// for the root; records come back exactly as they were persisted.
func (s *Store) LoadScan(root models.Root) (map[string]models.FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT relative_path, absolute_path, hash, size, modified_time
		FROM scanned_files WHERE root = ?`, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rows.Close()

	files := make(map[string]models.FileRecord)
	for rows.Next() {
		var record models.FileRecord
		err := rows.Scan(
			&record.RelativePath, &record.AbsolutePath,
			&record.Hash, &record.Size, &record.ModTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		files[record.RelativePath] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot: %w", err)
	}

	return files, nil
}

// MarkProcessed records that a relative path is fully merged into the
// output tree. Marking an already-processed path again is a no-op.
func (s *Store) MarkProcessed(relPath string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO processed_files (relative_path) VALUES (?)",
		relPath,
	)
	if err != nil {
		return fmt.Errorf("failed to mark %s processed: %w", relPath, err)
	}
	return nil
}

// IsProcessed reports whether a relative path was already merged
func (s *Store) IsProcessed(relPath string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM processed_files WHERE relative_path = ?", relPath,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", relPath, err)
	}
	return true, nil
}

// ProcessedCount returns the number of processed paths
func (s *Store) ProcessedCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM processed_files").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count processed files: %w", err)
	}
	return count, nil
}

// SetPhase records the orchestrator's current phase
func (s *Store) SetPhase(phase models.Phase) error {
	return s.SetMetadata("phase", string(phase))
}

// GetPhase returns the current phase, defaulting to scanning when unset
func (s *Store) GetPhase() (models.Phase, error) {
	value, err := s.GetMetadata("phase", string(models.PhaseScanning))
	if err != nil {
		return "", err
	}
	return models.Phase(value), nil
}

// AppendDecision appends one record to the conflict log. The log is
// append-only: records are never edited in place.
func (s *Store) AppendDecision(decision models.ConflictDecision) error {
	record1, err := json.Marshal(decision.Record1)
	if err != nil {
		return fmt.Errorf("failed to encode record1: %w", err)
	}
	record2, err := json.Marshal(decision.Record2)
	if err != nil {
		return fmt.Errorf("failed to encode record2: %w", err)
	}

	var decidedAt any
	if decision.DecidedAt != nil {
		decidedAt = decision.DecidedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.Exec(`
		INSERT INTO conflicts
			(relative_path, record1, record2, resolution, chosen_root, decided_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		decision.RelativePath, string(record1), string(record2),
		string(decision.Kind), int(decision.ChosenRoot), decidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append decision for %s: %w", decision.RelativePath, err)
	}
	return nil
}

// LatestDecision returns the most-recently-appended non-pending decision
// for a path, or nil when no such decision exists. Pending records are
// audit entries only and never satisfy a lookup.
func (s *Store) LatestDecision(relPath string) (*models.ConflictDecision, error) {
	row := s.db.QueryRow(`
		SELECT relative_path, record1, record2, resolution, chosen_root, decided_at
		FROM conflicts
		WHERE relative_path = ? AND resolution != ?
		ORDER BY id DESC LIMIT 1`,
		relPath, string(models.ResolutionPending))

	var decision models.ConflictDecision
	var record1, record2, resolution string
	var chosenRoot int
	var decidedAt sql.NullString
	err := row.Scan(&decision.RelativePath, &record1, &record2, &resolution, &chosenRoot, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decision for %s: %w", relPath, err)
	}

	if err := json.Unmarshal([]byte(record1), &decision.Record1); err != nil {
		return nil, fmt.Errorf("corrupt decision record for %s: %w", relPath, err)
	}
	if err := json.Unmarshal([]byte(record2), &decision.Record2); err != nil {
		return nil, fmt.Errorf("corrupt decision record for %s: %w", relPath, err)
	}
	decision.Kind = models.ResolutionKind(resolution)
	decision.ChosenRoot = models.Root(chosenRoot)

	if decidedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, decidedAt.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt decision timestamp for %s: %w", relPath, err)
		}
		decision.DecidedAt = &t
	}

	return &decision, nil
}

// ConflictCount returns the total number of records in the conflict log,
// pending entries included.
func (s *Store) ConflictCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM conflicts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count conflicts: %w", err)
	}
	return count, nil
}

// Destroy irreversibly deletes all persisted state. Checkpoint state only
// exists for crash recovery during a run, so a fully successful merge
// ends by destroying it. Safe to call when no state exists.
func (s *Store) Destroy() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close checkpoint database: %w", err)
		}
		s.db = nil
	}

	// WAL sidecars go with the main file
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove checkpoint file: %w", err)
		}
	}

	if s.lock != nil {
		s.lock.Unlock()
		os.Remove(s.path + ".lock")
		s.lock = nil
	}

	return nil
}
