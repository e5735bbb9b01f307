package cache

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/pkg/errors"
)

const (
	recordExt  = ".json"
	tempPrefix = ".tmp-"
	// число блокировок на ключи; ключи с одним хешем делят блокировку
	lockStripes = 64
)

type fileStore struct {
	dir    string
	logger *zap.Logger
	// замена и условное удаление одного ключа не пересекаются внутри процесса
	locks [lockStripes]sync.Mutex
}

// NewFileStore создаёт хранилище записей: один файл <key>.json на запись в dir.
// Замена записи - запись во временный файл того же каталога, fsync и rename
func NewFileStore(dir string, logger *zap.Logger) (repository.RecordStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	// остатки прерванных записей
	leftovers, _ := filepath.Glob(filepath.Join(dir, tempPrefix+"*"))
	for _, path := range leftovers {
		_ = os.Remove(path)
	}

	logger.Info("File cache store ready", zap.String("dir", dir))

	return &fileStore{dir: dir, logger: logger}, nil
}

func (s *fileStore) Name() string { return "file" }

func (s *fileStore) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache record: %w", err)
	}
	return data, nil
}

func (s *fileStore) Save(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp record: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp record: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp record: %w", err)
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache record: %w", err)
	}
	return nil
}

func (s *fileStore) DeleteIf(ctx context.Context, key string, expected []byte) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	current, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache record: %w", err)
	}
	if !bytes.Equal(current, expected) {
		return false, nil
	}
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("delete cache record: %w", err)
	}
	return true, nil
}

func (s *fileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !isRecordFile(e) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), recordExt))
	}
	return keys, nil
}

func (s *fileStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	s.logger.Info("File cache cleared", zap.Int("removed", removed))
	return removed, nil
}

// Summary берёт размер и время изменения из файловой системы
func (s *fileStore) Summary(ctx context.Context) (*domain.RecordSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	summary := &domain.RecordSummary{}
	for _, e := range entries {
		if !isRecordFile(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// удалена между ReadDir и Info
			continue
		}
		summary.Observe(info.Size(), info.ModTime().UTC())
	}
	return summary, nil
}

func isRecordFile(e fs.DirEntry) bool {
	name := e.Name()
	return !e.IsDir() && !strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, recordExt)
}

func (s *fileStore) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}

// path возвращает файл записи; ключ не должен выходить за пределы каталога
func (s *fileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.dir, key+recordExt), nil
}
