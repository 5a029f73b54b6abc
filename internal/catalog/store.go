package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"bidsmeta/internal/config"
	"bidsmeta/internal/openminds"
)

// ErrCatalogLocked reports another process writing to the catalog.
var ErrCatalogLocked = errors.New("catalog is locked by another process")

const (
	lockRetryDelay = 100 * time.Millisecond
	// timeLayout keeps a fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// RunStatus is the outcome of a conversion run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded conversion.
type Run struct {
	ID           string
	DatasetName  string
	DatasetRoot  string
	Status       RunStatus
	StartedAt    time.Time
	FinishedAt   time.Time
	FilesSeen    int
	Scanners     int
	Usages       int
	Acquisitions int
	Warnings     int
	Skipped      int
	OutputPath   string
	ErrorMessage string
}

// StoredEntity is one persisted entity document.
type StoredEntity struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Position int    `json:"position"`
	Document string `json:"document"`
}

// Store manages the run catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := strings.TrimSpace(cfg.Paths.CatalogPath)
	if dbPath == "" {
		return nil, errors.New("catalog path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: flock.New(dbPath + ".lock")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// withLock runs fn while holding the catalog write lock.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrCatalogLocked, err)
		}
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return ErrCatalogLocked
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

// BeginRun records run as running. StartedAt defaults to now.
func (s *Store) BeginRun(ctx context.Context, run *Run) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunRunning
	return s.withLock(ctx, func() error {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO runs (id, dataset_name, dataset_root, status, started_at)
             VALUES (?, ?, ?, ?, ?)`,
			run.ID,
			run.DatasetName,
			run.DatasetRoot,
			run.Status,
			run.StartedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// FinishRun stores the final counters of run and, when coll is non-nil, its
// entities, in one transaction.
func (s *Store) FinishRun(ctx context.Context, run *Run, coll *Collection) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	return s.withLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(
			ctx,
			`UPDATE runs
             SET status = ?, finished_at = ?, files_seen = ?, scanners = ?, usages = ?,
                 acquisitions = ?, warnings = ?, skipped = ?, output_path = ?, error_message = ?
             WHERE id = ?`,
			run.Status,
			run.FinishedAt.UTC().Format(timeLayout),
			run.FilesSeen,
			run.Scanners,
			run.Usages,
			run.Acquisitions,
			run.Warnings,
			run.Skipped,
			nullableString(run.OutputPath),
			nullableString(run.ErrorMessage),
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update run: %s not found", run.ID)
		}

		if coll != nil {
			stmt, err := tx.PrepareContext(ctx,
				`INSERT INTO entities (run_id, entity_id, position, entity_type, document) VALUES (?, ?, ?, ?, ?)`)
			if err != nil {
				return fmt.Errorf("prepare entity insert: %w", err)
			}
			defer stmt.Close()
			for i, entity := range coll.Entities() {
				doc, err := EncodeEntity(entity)
				if err != nil {
					return err
				}
				if _, err := stmt.ExecContext(ctx, run.ID, entity.EntityID(), i, entity.EntityType(), string(doc)); err != nil {
					return fmt.Errorf("insert entity %s: %w", entity.EntityID(), err)
				}
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

const runColumns = "id, dataset_name, dataset_root, status, started_at, finished_at, files_seen, scanners, usages, acquisitions, warnings, skipped, output_path, error_message"

// GetRun fetches a run by identifier. A missing run yields nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunEntities returns the entities stored for a run in emission order,
// optionally limited to one type IRI or short type name.
func (s *Store) RunEntities(ctx context.Context, runID, entityType string) ([]StoredEntity, error) {
	query := `SELECT entity_id, entity_type, position, document FROM entities WHERE run_id = ?`
	args := []any{runID}
	if entityType = strings.TrimSpace(entityType); entityType != "" {
		if !strings.Contains(entityType, "/") {
			entityType = openminds.TypeIRI(entityType)
		}
		query += ` AND entity_type = ?`
		args = append(args, entityType)
	}
	query += ` ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []StoredEntity
	for rows.Next() {
		var e StoredEntity
		if err := rows.Scan(&e.ID, &e.Type, &e.Position, &e.Document); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its entities.
func (s *Store) DeleteRun(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.withLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		removed = n > 0
		return nil
	})
	return removed, err
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		outputPath  sql.NullString
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.DatasetName,
		&run.DatasetRoot,
		&status,
		&startedRaw,
		&finishedRaw,
		&run.FilesSeen,
		&run.Scanners,
		&run.Usages,
		&run.Acquisitions,
		&run.Warnings,
		&run.Skipped,
		&outputPath,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.OutputPath = outputPath.String
	run.ErrorMessage = errorMsg.String
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
