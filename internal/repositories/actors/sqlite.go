package actors

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
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS actors (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteRepository stores actors as JSON rows
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) a SQLite actor store at path
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sqlitedb.Open(path, sqliteSchema)
	if err != nil {
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create stores a new actor
func (r *SQLiteRepository) Create(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	now := time.Now().UTC()
	actor.CreatedAt = now
	actor.UpdatedAt = now

	payload, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO actors (id, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		actor.ID, actor.Name, string(payload), now.UnixNano(), now.UnixNano())
	if sqlitedb.IsUniqueViolation(err) {
		return alreadyExists(actor.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}
	return nil
}

// Get retrieves an actor by ID
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM actors WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	var actor entities.Actor
	if err := json.Unmarshal([]byte(data), &actor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	return &actor, nil
}

// List returns all actors ordered by name
func (r *SQLiteRepository) List(ctx context.Context) ([]*entities.Actor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM actors ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer rows.Close()

	var out []*entities.Actor
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		var actor entities.Actor
		if err := json.Unmarshal([]byte(data), &actor); err != nil {
			return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
		}
		out = append(out, &actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read actors: %w", err)
	}
	return out, nil
}

// Update replaces an existing actor
func (r *SQLiteRepository) Update(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	existing, err := r.Get(ctx, actor.ID)
	if err != nil {
		return err
	}

	actor.CreatedAt = existing.CreatedAt
	actor.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE actors SET name = ?, data = ?, updated_at = ? WHERE id = ?`,
		actor.Name, string(payload), actor.UpdatedAt.UnixNano(), actor.ID)
	if err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// Delete removes an actor
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return yzeerr.InvalidArgument("actor ID is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM actors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
