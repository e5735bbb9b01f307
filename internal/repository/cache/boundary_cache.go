package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/metrics"
	"github.com/boundary-microservice/internal/pkg/errors"
)

// Options - параметры кеша границ
type Options struct {
	// Precision - число знаков после запятой при квантовании координат
	Precision int
	// TTL == 0 - записи не устаревают
	TTL time.Duration
	// Now подменяется в тестах
	Now func() time.Time
}

type boundaryCache struct {
	store     repository.RecordStore
	precision int
	ttl       time.Duration
	now       func() time.Time
	hits      atomic.Uint64
	misses    atomic.Uint64
	logger    *zap.Logger
}

// NewBoundaryCache создаёт кеш границ поверх хранилища записей
func NewBoundaryCache(store repository.RecordStore, opts Options, logger *zap.Logger) repository.BoundaryCache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &boundaryCache{
		store:     store,
		precision: opts.Precision,
		ttl:       opts.TTL,
		now:       now,
		logger:    logger,
	}
}

// CoordinateKey возвращает исходный ключ записи для точки: координаты квантуются,
// набор уровней добавляется только если он отличается от цепочки по умолчанию
func CoordinateKey(coord domain.Coordinate, levels []domain.AdministrativeLevel, precision int) string {
	q := coord.Quantize(precision)
	key := "coords:" + formatQuantized(q.Latitude, precision) + ":" + formatQuantized(q.Longitude, precision)
	if !domain.IsDefaultLevels(levels) {
		sorted := domain.SortLevels(levels)
		names := make([]string, len(sorted))
		for i, l := range sorted {
			names[i] = l.String()
		}
		key += ":" + strings.Join(names, ",")
	}
	return key
}

// PostalCodeKey возвращает исходный ключ записи почтового индекса
func PostalCodeKey(code string) string {
	return "postal:" + code
}

// StorageKey - имя записи в хранилище: sha256 исходного ключа
func StorageKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func formatQuantized(v float64, precision int) string {
	// -0 и 0 дают один ключ
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func (c *boundaryCache) Get(ctx context.Context, coord domain.Coordinate) (*domain.ResolvedBoundary, bool) {
	return c.lookup(ctx, CoordinateKey(coord, nil, c.precision))
}

func (c *boundaryCache) GetForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel) (*domain.ResolvedBoundary, bool) {
	return c.lookup(ctx, CoordinateKey(coord, levels, c.precision))
}

func (c *boundaryCache) Put(ctx context.Context, coord domain.Coordinate, boundary *domain.ResolvedBoundary) error {
	return c.PutForLevels(ctx, coord, nil, boundary)
}

func (c *boundaryCache) PutForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, boundary *domain.ResolvedBoundary) error {
	q := coord.Quantize(c.precision)
	return c.save(ctx, &domain.CacheEntry{
		Key:        CoordinateKey(coord, levels, c.precision),
		Coordinate: &q,
		Boundary:   boundary,
	})
}

func (c *boundaryCache) GetPostalCode(ctx context.Context, code string) (*domain.ResolvedBoundary, bool) {
	return c.lookup(ctx, PostalCodeKey(code))
}

func (c *boundaryCache) PutPostalCode(ctx context.Context, code string, boundary *domain.ResolvedBoundary) error {
	return c.save(ctx, &domain.CacheEntry{
		Key:        PostalCodeKey(code),
		PostalCode: code,
		Boundary:   boundary,
	})
}

func (c *boundaryCache) lookup(ctx context.Context, rawKey string) (*domain.ResolvedBoundary, bool) {
	storageKey := StorageKey(rawKey)

	data, err := c.store.Load(ctx, storageKey)
	if err != nil {
		if !stderrors.Is(err, errors.ErrRecordNotFound) {
			c.logger.Warn("Cache record read failed",
				zap.String("key", rawKey),
				zap.Error(err))
		}
		c.miss("miss")
		return nil, false
	}

	entry, err := decodeEntry(data, rawKey)
	if err != nil {
		c.logger.Warn("Dropping corrupt cache record",
			zap.String("key", rawKey),
			zap.Error(err))
		c.drop(ctx, storageKey, data)
		c.miss("corrupt")
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.Timestamp) > c.ttl {
		c.logger.Debug("Cache record expired",
			zap.String("key", rawKey),
			zap.Time("timestamp", entry.Timestamp))
		c.drop(ctx, storageKey, data)
		c.miss("expired")
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return entry.Boundary.Clone(), true
}

func (c *boundaryCache) save(ctx context.Context, entry *domain.CacheEntry) error {
	if entry.Boundary == nil || len(entry.Boundary.Ring) < domain.MinRingPoints {
		metrics.CacheWritesTotal.WithLabelValues("rejected").Inc()
		return errors.ErrCacheWrite.WithDetails(map[string]interface{}{"reason": "boundary has too few points"})
	}

	entry.Version = domain.CacheEntryVersion
	entry.Timestamp = c.now().UTC()
	entry.Boundary = entry.Boundary.Clone()

	data, err := json.Marshal(entry)
	if err != nil {
		metrics.CacheWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: encode: %v", errors.ErrCacheWrite, err)
	}

	if err := c.store.Save(ctx, StorageKey(entry.Key), data); err != nil {
		metrics.CacheWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", errors.ErrCacheWrite, err)
	}

	metrics.CacheWritesTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("Cache record saved",
		zap.String("key", entry.Key),
		zap.Int("bytes", len(data)))
	return nil
}

func (c *boundaryCache) Clear(ctx context.Context) (int, error) {
	removed, err := c.store.Clear(ctx)
	if err != nil {
		return removed, fmt.Errorf("%w: %v", errors.ErrCacheError, err)
	}
	return removed, nil
}

// Stats строится по метаданным хранилища, записи не декодируются.
// Время записи - время сохранения в хранилище
func (c *boundaryCache) Stats(ctx context.Context) (*domain.CacheStats, error) {
	summary, err := c.store.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCacheError, err)
	}

	return &domain.CacheStats{
		Backend:        c.store.Name(),
		Entries:        summary.Count,
		TotalSizeBytes: summary.TotalBytes,
		Oldest:         summary.Oldest,
		Newest:         summary.Newest,
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
	}, nil
}

func (c *boundaryCache) miss(result string) {
	c.misses.Add(1)
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// drop удаляет прочитанную запись, если её не успели заменить
func (c *boundaryCache) drop(ctx context.Context, storageKey string, seen []byte) {
	deleted, err := c.store.DeleteIf(ctx, storageKey, seen)
	if err != nil {
		c.logger.Warn("Failed to delete cache record", zap.String("storage_key", storageKey), zap.Error(err))
		return
	}
	if !deleted {
		c.logger.Debug("Cache record replaced concurrently, kept", zap.String("storage_key", storageKey))
	}
}

// decodeEntry проверяет версию, ключ и границу записи
func decodeEntry(data []byte, rawKey string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if entry.Version != domain.CacheEntryVersion {
		return nil, fmt.Errorf("unsupported record version %d", entry.Version)
	}
	if entry.Key != rawKey {
		return nil, fmt.Errorf("record key %q does not match %q", entry.Key, rawKey)
	}
	if entry.Boundary == nil || len(entry.Boundary.Ring) < domain.MinRingPoints {
		return nil, fmt.Errorf("record boundary has too few points")
	}
	return &entry, nil
}
