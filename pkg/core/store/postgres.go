package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"value_copilot/pkg/core/conversation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS copilot_sessions (
	id           TEXT PRIMARY KEY,
	session_json JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);`

// PostgresStore keeps each session as a JSONB document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ SessionStore = (*PostgresStore)(nil)

// NewPostgresStore creates the sessions table if needed.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Create(ctx context.Context) (*conversation.Session, error) {
	s := conversation.NewSession()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO copilot_sessions (id, session_json, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		s.ID, data, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*conversation.Session, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT session_json FROM copilot_sessions WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s conversation.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *conversation.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE copilot_sessions SET session_json = $2, updated_at = $3 WHERE id = $1`,
		s.ID, data, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM copilot_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
