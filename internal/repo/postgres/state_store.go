package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx — общий интерфейс *pgxpool.Pool и pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StateStore — состояние терминалов в таблице terminal_state (last-write-wins).
type StateStore struct {
	db dbtx
}

func NewStateStore(db dbtx) *StateStore {
	return &StateStore{db: db}
}

const (
	qGetState = `SELECT value FROM terminal_state WHERE key = $1`
	qSetState = `
INSERT INTO terminal_state (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	qRemoveState = `DELETE FROM terminal_state WHERE key = $1`
)

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, qGetState, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, qSetState, key, string(value))
	return err
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, qRemoveState, key)
	return err
}
