package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/pkg/errors"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS boundary_cache (
    key        TEXT PRIMARY KEY,
    record     BYTEA NOT NULL,
    size       INTEGER NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type cacheStore struct {
	db     *DB
	logger *zap.Logger
}

// NewCacheStore - хранилище записей кеша в таблице boundary_cache.
// Замена записи - один upsert, читатели видят либо старую, либо новую версию
func NewCacheStore(db *DB) repository.RecordStore {
	return &cacheStore{
		db:     db,
		logger: db.logger,
	}
}

// EnsureSchema создаёт таблицу кеша, если миграции не применялись
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, createCacheTable); err != nil {
		return fmt.Errorf("failed to create boundary_cache table: %w", err)
	}
	return nil
}

func (s *cacheStore) Name() string { return "postgres" }

func (s *cacheStore) Load(ctx context.Context, key string) ([]byte, error) {
	var record []byte
	err := s.db.GetContext(ctx, &record, `SELECT record FROM boundary_cache WHERE key = $1`, key)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load cache record", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("load cache record: %w", err)
	}
	return record, nil
}

func (s *cacheStore) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO boundary_cache (key, record, size, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET record = EXCLUDED.record, size = EXCLUDED.size, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, data, len(data)); err != nil {
		s.logger.Error("Failed to save cache record", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save cache record: %w", err)
	}
	return nil
}

func (s *cacheStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM boundary_cache WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete cache record: %w", err)
	}
	return nil
}

// DeleteIf сравнивает содержимое в том же DELETE, конкурентный upsert не теряется
func (s *cacheStore) DeleteIf(ctx context.Context, key string, expected []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boundary_cache WHERE key = $1 AND record = $2`, key, expected)
	if err != nil {
		return false, fmt.Errorf("delete cache record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete cache record: %w", err)
	}
	return n > 0, nil
}

func (s *cacheStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, `SELECT key FROM boundary_cache ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list cache records: %w", err)
	}
	return keys, nil
}

func (s *cacheStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boundary_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache records: %w", err)
	}
	s.logger.Info("Postgres cache cleared", zap.Int64("removed", n))
	return int(n), nil
}

type summaryRow struct {
	Count  int64        `db:"count"`
	Total  int64        `db:"total"`
	Oldest sql.NullTime `db:"oldest"`
	Newest sql.NullTime `db:"newest"`
}

// Summary - агрегат по колонкам size и updated_at, record не читается
func (s *cacheStore) Summary(ctx context.Context) (*domain.RecordSummary, error) {
	query := `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(size), 0)::BIGINT AS total,
		       MIN(updated_at) AS oldest,
		       MAX(updated_at) AS newest
		FROM boundary_cache
	`
	var row summaryRow
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("summarize cache records: %w", err)
	}

	summary := &domain.RecordSummary{
		Count:      int(row.Count),
		TotalBytes: row.Total,
	}
	if row.Oldest.Valid {
		t := row.Oldest.Time.UTC()
		summary.Oldest = &t
	}
	if row.Newest.Valid {
		t := row.Newest.Time.UTC()
		summary.Newest = &t
	}
	return summary, nil
}
