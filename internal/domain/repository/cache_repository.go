package repository

import (
	"context"

	"github.com/boundary-microservice/internal/domain"
)

// BoundaryCache определяет методы персистентного кеша границ
type BoundaryCache interface {
	// Get возвращает ранее найденную границу; false - промах
	Get(ctx context.Context, coord domain.Coordinate) (*domain.ResolvedBoundary, bool)

	// GetForLevels - то же для нестандартного набора уровней
	GetForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel) (*domain.ResolvedBoundary, bool)

	// Put сохраняет копию границы (ErrCacheWrite при сбое хранилища)
	Put(ctx context.Context, coord domain.Coordinate, boundary *domain.ResolvedBoundary) error

	// PutForLevels - то же для нестандартного набора уровней
	PutForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, boundary *domain.ResolvedBoundary) error

	// GetPostalCode возвращает границу почтового индекса
	GetPostalCode(ctx context.Context, code string) (*domain.ResolvedBoundary, bool)

	// PutPostalCode сохраняет границу почтового индекса
	PutPostalCode(ctx context.Context, code string, boundary *domain.ResolvedBoundary) error

	// Clear удаляет все записи и возвращает их количество
	Clear(ctx context.Context) (int, error)

	// Stats возвращает статистику кеша
	Stats(ctx context.Context) (*domain.CacheStats, error)
}

// RecordStore - хранилище записей кеша: один ключ - одна запись.
// Save должен быть атомарным относительно читателей
type RecordStore interface {
	// Name возвращает тип хранилища
	Name() string

	// Load возвращает запись; ErrRecordNotFound если её нет
	Load(ctx context.Context, key string) ([]byte, error)

	// Save атомарно записывает или заменяет запись
	Save(ctx context.Context, key string, data []byte) error

	// Delete удаляет запись; отсутствие записи не ошибка
	Delete(ctx context.Context, key string) error

	// DeleteIf удаляет запись, только если её содержимое всё ещё равно expected.
	// false - запись уже заменена или удалена
	DeleteIf(ctx context.Context, key string, expected []byte) (bool, error)

	// List возвращает все ключи
	List(ctx context.Context) ([]string, error)

	// Clear удаляет все записи
	Clear(ctx context.Context) (int, error)

	// Summary считает записи, их размер и время записи по метаданным хранилища
	Summary(ctx context.Context) (*domain.RecordSummary, error)
}
