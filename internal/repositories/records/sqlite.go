package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/repositories/sqlitedb"
	"go.uber.org/zap"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	actor_id   TEXT NOT NULL,
	has_roll   INTEGER NOT NULL DEFAULT 0,
	version    INTEGER NOT NULL,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_actor_created ON records (actor_id, created_at DESC);
`

// SQLiteRepository stores records in a single SQLite table. Mutate is a
// compare-and-swap on the version column.
type SQLiteRepository struct {
	db           *sql.DB
	timeProvider TimeProvider
	maxRetries   int
	logger       *zap.Logger
}

// SQLiteRepoConfig holds configuration for the SQLite repository
type SQLiteRepoConfig struct {
	Path         string       // Required, ":memory:" for a private in-memory database
	TimeProvider TimeProvider // Optional
	MaxRetries   int          // Optional
	Logger       *zap.Logger  // Optional
}

// OpenSQLite opens (and migrates) a SQLite record store
func OpenSQLite(cfg *SQLiteRepoConfig) (*SQLiteRepository, error) {
	if cfg == nil {
		return nil, yzeerr.InvalidArgument("sqlite config is required")
	}

	db, err := sqlitedb.Open(cfg.Path, sqliteSchema)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{
		db:           db,
		timeProvider: cfg.TimeProvider,
		maxRetries:   cfg.MaxRetries,
		logger:       cfg.Logger,
	}
	if repo.timeProvider == nil {
		repo.timeProvider = SystemTime()
	}
	if repo.maxRetries <= 0 {
		repo.maxRetries = DefaultMaxRetries
	}
	if repo.logger == nil {
		repo.logger = zap.NewNop()
	}
	return repo, nil
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create stores a new record
func (r *SQLiteRepository) Create(ctx context.Context, record *entities.Record) error {
	if err := validateNew(record); err != nil {
		return err
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE id = ?`, record.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	if exists > 0 {
		return alreadyExists(record.ID)
	}

	now := r.timeProvider.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Version = 1

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO records (id, actor_id, has_roll, version, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ActorID, hasRoll(record), record.Version, string(payload),
		now.UnixNano(), now.UnixNano())
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return alreadyExists(record.ID)
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}

	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM records WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return decode([]byte(data))
}

// Mutate reads the row, applies fn and writes back only if the version is
// unchanged, retrying on a lost race
func (r *SQLiteRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}
	if fn == nil {
		return nil, yzeerr.InvalidArgument("mutate function is required")
	}

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if attempt > 1 {
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		current, err := r.Get(ctx, id)
		if sqlitedb.IsBusy(err) {
			r.logBusy(id, attempt, err)
			continue
		}
		if err != nil {
			return nil, err
		}

		next, err := applyMutation(current, fn, r.timeProvider)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return current, nil
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}

		res, err := r.db.ExecContext(ctx,
			`UPDATE records SET data = ?, version = ?, has_roll = ?, updated_at = ?
			 WHERE id = ? AND version = ?`,
			string(payload), next.Version, hasRoll(next), next.UpdatedAt.UnixNano(),
			id, current.Version)
		if sqlitedb.IsBusy(err) {
			r.logBusy(id, attempt, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update record: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to update record: %w", err)
		}
		if n == 1 {
			return next, nil
		}

		r.logger.Debug("record version moved during mutate, retrying",
			zap.String("record_id", id),
			zap.Int("attempt", attempt))
	}

	return nil, yzeerr.Conflictf("record '%s' kept changing; gave up after %d attempts", id, r.maxRetries).
		WithMeta("record_id", id)
}

// ListByActor returns an actor's records, newest first
func (r *SQLiteRepository) ListByActor(ctx context.Context, actorID string) ([]*entities.Record, error) {
	if actorID == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}
	return r.query(ctx,
		`SELECT data FROM records WHERE actor_id = ? ORDER BY created_at DESC, rowid DESC`, actorID)
}

// LatestByActor returns the newest record for an actor carrying a roll state
func (r *SQLiteRepository) LatestByActor(ctx context.Context, actorID string) (*entities.Record, error) {
	if actorID == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	list, err := r.query(ctx,
		`SELECT data FROM records WHERE actor_id = ? AND has_roll = 1
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, actorID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, noRollRecord(actorID)
	}
	return list[0], nil
}

// Delete removes a record
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return yzeerr.InvalidArgument("record ID is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*entities.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []*entities.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) logBusy(id string, attempt int, err error) {
	r.logger.Debug("record locked by another connection, retrying",
		zap.String("record_id", id),
		zap.Int("attempt", attempt),
		zap.Error(err))
}

// backoff waits a little longer on each attempt so a writer holding the
// lock can commit
func backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt*attempt) * 10 * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func hasRoll(record *entities.Record) int {
	if record.RollState != nil {
		return 1
	}
	return 0
}
