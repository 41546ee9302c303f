package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type stateStore struct {
	db *sql.DB
}

// NewStateStore creates a StateStore backed by the app_state table.
func NewStateStore(db *sql.DB) repository.StateStore {
	return &stateStore{db: db}
}

func (r *stateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("state_store")

	query, args, err := sqlBuilder.
		Select("value").
		From("app_state").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key not present: %s", key)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to get key %s: %v", key, err)
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *stateStore) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("state_store")

	query, args, err := sqlBuilder.
		Insert("app_state").
		Columns("key", "value").
		Values(key, string(value)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		log.Error("failed to build upsert: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to set key %s: %v", key, err)
		return err
	}
	log.Debug("key written: %s (%d bytes)", key, len(value))
	return nil
}

func (r *stateStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("state_store")

	query, args, err := sqlBuilder.
		Delete("app_state").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		log.Error("failed to build delete: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *stateStore) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("state_store")

	query, args, err := sqlBuilder.Delete("app_state").ToSql()
	if err != nil {
		log.Error("failed to build clear: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to clear state: %v", err)
		return err
	}
	log.Info("all persisted state cleared")
	return nil
}
