package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/pkg/errors"
)

const (
	redisKeyPrefix = "boundary:cache:"
	// redisIndexKey - sorted set ключей со временем записи (мс) для статистики.
	// Вне redisKeyPrefix, чтобы SCAN по записям его не видел
	redisIndexKey = "boundary:cache-index"
	scanBatch     = 500
)

// deleteIfScript удаляет запись, только если она не изменилась с момента чтения
var deleteIfScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[2], ARGV[2])
	return 1
end
return 0
`)

type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore - хранилище записей в Redis: SET заменяет запись одной командой.
// Срок жизни записей контролирует BoundaryCache, в Redis ключи без TTL
func NewRedisStore(redis *Redis) repository.RecordStore {
	return &redisStore{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (s *redisStore) Name() string { return "redis" }

func (s *redisStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return val, nil
}

func (s *redisStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, data, 0)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(time.Now().UnixMilli()), Member: key})
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKeyPrefix+key)
		pipe.ZRem(ctx, redisIndexKey, key)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (s *redisStore) DeleteIf(ctx context.Context, key string, expected []byte) (bool, error) {
	n, err := deleteIfScript.Run(ctx, s.client, []string{redisKeyPrefix + key, redisIndexKey}, expected, key).Int()
	if err != nil {
		s.logger.Error("Failed to conditionally delete from cache", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache delete error: %w", err)
	}
	return n == 1, nil
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan error: %w", err)
	}
	return keys, nil
}

func (s *redisStore) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("cache delete error: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache scan error: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	if err := s.client.Del(ctx, redisIndexKey).Err(); err != nil {
		return removed, fmt.Errorf("cache delete error: %w", err)
	}

	s.logger.Info("Redis cache cleared", zap.Int("removed", removed))
	return removed, nil
}

// Summary читает время записи из индекса и размер через STRLEN, без GET записей.
// Ключи индекса без записи (удалены в обход хранилища) пропускаются
func (s *redisStore) Summary(ctx context.Context) (*domain.RecordSummary, error) {
	members, err := s.client.ZRangeWithScores(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache index error: %w", err)
	}

	summary := &domain.RecordSummary{}
	for start := 0; start < len(members); start += scanBatch {
		end := start + scanBatch
		if end > len(members) {
			end = len(members)
		}
		chunk := members[start:end]

		pipe := s.client.Pipeline()
		sizes := make([]*redis.IntCmd, len(chunk))
		for i, m := range chunk {
			sizes[i] = pipe.StrLen(ctx, redisKeyPrefix+fmt.Sprint(m.Member))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("cache size error: %w", err)
		}

		for i, m := range chunk {
			size := sizes[i].Val()
			if size == 0 {
				continue
			}
			summary.Observe(size, time.UnixMilli(int64(m.Score)).UTC())
		}
	}
	return summary, nil
}
