package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodtrack/internal/models"
)

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStorage uses a kv_store table as a hosted key-value service: one JSONB
// value per key, the mood collection living under a single key.
type PostgresStorage struct {
	db    querier
	key   string
	close func()
}

func NewPostgresStorage(pool *pgxpool.Pool, key string) *PostgresStorage {
	return &PostgresStorage{
		db:    pool,
		key:   key,
		close: pool.Close,
	}
}

// OpenPostgresStorage connects, pings and creates kv_store when it is missing.
func OpenPostgresStorage(ctx context.Context, dsn, key string) (*PostgresStorage, error) {
	op := "internal/storage/postgres.go OpenPostgresStorage"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("Failure to create pool in %s: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(op, "ping postgres", err)
	}

	st := NewPostgresStorage(pool, key)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return st, nil
}

func (db_st *PostgresStorage) EnsureSchema(ctx context.Context) error {
	op := "internal/storage/postgres.go EnsureSchema"

	sql_query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	if _, err := db_st.db.Exec(ctx, sql_query); err != nil {
		return unavailable(op, "create kv_store", err)
	}
	return nil
}

func (db_st *PostgresStorage) LoadAll(ctx context.Context) ([]models.MoodEntry, error) {
	op := "internal/storage/postgres.go LoadAll"

	sql_query := `
	SELECT value FROM kv_store
	WHERE key = $1
	`

	var raw []byte
	err := db_st.db.QueryRow(ctx, sql_query, db_st.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []models.MoodEntry{}, nil
	}
	if err != nil {
		return nil, unavailable(op, "select "+db_st.key, err)
	}

	var entries []models.MoodEntry
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, unavailable(op, "decode "+db_st.key, err)
		}
	}

	return emptyIfNil(entries), nil
}

func (db_st *PostgresStorage) SaveAll(ctx context.Context, entries []models.MoodEntry) error {
	op := "internal/storage/postgres.go SaveAll"

	value, err := json.Marshal(emptyIfNil(entries))
	if err != nil {
		return unavailable(op, "encode entries", err)
	}

	sql_query := `
	INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = EXCLUDED.updated_at
	`

	if _, err := db_st.db.Exec(ctx, sql_query, db_st.key, value); err != nil {
		return unavailable(op, "upsert "+db_st.key, err)
	}

	return nil
}

func (db_st *PostgresStorage) Close() error {
	if db_st.close != nil {
		db_st.close()
	}
	return nil
}
