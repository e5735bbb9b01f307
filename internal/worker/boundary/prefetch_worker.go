package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/usecase"
	"github.com/boundary-microservice/internal/worker"
)

const (
	defaultBatchSize = 20                     // максимум сообщений за раз
	emptyQueueSleep  = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep       = time.Second            // пауза при ошибке
)

// BatchResolver - batch-разрешение границ (BoundaryUseCase)
type BatchResolver interface {
	GetBoundaries(ctx context.Context, requests []usecase.BoundaryRequest) []usecase.BoundaryResult
}

// PrefetchWorker прогревает кеш границ по событиям stream:boundary:resolve
// и публикует краткий результат в stream:boundary:done
type PrefetchWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	resolver     BatchResolver
	consumerName string
	batchSize    int
}

// NewPrefetchWorker создает новый PrefetchWorker
func NewPrefetchWorker(
	streamRepo repository.StreamRepository,
	resolver BatchResolver,
	consumerGroup string,
	batchSize int,
	logger *zap.Logger,
) *PrefetchWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &PrefetchWorker{
		BaseWorker:   worker.NewBaseWorker("boundary-prefetch", consumerGroup, logger),
		streamRepo:   streamRepo,
		resolver:     resolver,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start запускает воркер
func (w *PrefetchWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting PrefetchWorker (batch mode)",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamBoundaryResolve, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				if !w.Sleep(errorSleep) {
					return nil
				}
				continue
			}

			if processed == 0 && !w.Sleep(emptyQueueSleep) {
				return nil
			}
		}
	}
}

// ProcessBatch читает и обрабатывает batch сообщений.
// Возвращает количество прочитанных сообщений
func (w *PrefetchWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	// 1. Читаем до batchSize сообщений (неблокирующий режим)
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamBoundaryResolve,
		w.ConsumerGroup(),
		w.consumerName,
		w.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Debug("Processing batch", zap.Int("message_count", len(messages)))

	// 2. Парсим события. Битые подтверждаем сразу, чтобы не застревали.
	// Битым считается и событие без request_id: ответ на него некому адресовать.
	// Событие с request_id, но неверными координатами или уровнями получает ответ с ошибкой
	events := make([]*domain.BoundaryResolveEvent, 0, len(messages))
	requests := make([]usecase.BoundaryRequest, 0, len(messages))
	messageIDs := make([]string, 0, len(messages))
	rejected := make([]*domain.BoundaryDoneEvent, 0)

	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			_ = w.streamRepo.AckMessage(ctx, domain.StreamBoundaryResolve, w.ConsumerGroup(), msg.ID)
			w.RecordMalformed(1)
			continue
		}

		messageIDs = append(messageIDs, msg.ID)

		req, err := buildRequest(event)
		if err != nil {
			rejected = append(rejected, errorEvent(event, err))
			continue
		}
		events = append(events, event)
		requests = append(requests, req)
	}

	// 3. Разрешаем batch
	results := w.resolver.GetBoundaries(ctx, requests)

	// остановка посреди batch: без ACK, сообщения останутся в pending
	if err := ctx.Err(); err != nil {
		return len(messages), err
	}

	// 4. Публикуем результаты в stream:boundary:done
	failed := len(rejected)
	for _, done := range rejected {
		w.publish(ctx, done)
	}
	for i, result := range results {
		if i >= len(events) {
			break
		}
		if result.Err != nil {
			failed++
			w.publish(ctx, errorEvent(events[i], result.Err))
			continue
		}
		w.publish(ctx, &domain.BoundaryDoneEvent{
			RequestID: events[i].RequestID,
			Boundary:  summarize(result.Boundary),
			FromCache: result.FromCache,
		})
	}

	// 5. ACK всех обработанных сообщений
	if err := w.streamRepo.AckMessages(ctx, domain.StreamBoundaryResolve, w.ConsumerGroup(), messageIDs); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
		// Не критично - сообщения будут переобработаны
	}

	w.RecordProcessed(len(messageIDs) - failed)
	w.RecordFailed(failed)

	logger.Info("Batch processed",
		zap.Int("processed", len(messageIDs)),
		zap.Int("errors", failed))

	return len(messages), nil
}

func (w *PrefetchWorker) publish(ctx context.Context, done *domain.BoundaryDoneEvent) {
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamBoundaryDone, done); err != nil {
		w.Logger().Error("Failed to publish done event",
			zap.String("request_id", done.RequestID.String()),
			zap.Error(err))
	}
}

// parseMessage парсит сообщение из стрима в BoundaryResolveEvent
func parseMessage(msg domain.StreamMessage) (*domain.BoundaryResolveEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var event domain.BoundaryResolveEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.RequestID == uuid.Nil {
		return nil, fmt.Errorf("missing request_id")
	}

	return &event, nil
}

func buildRequest(event *domain.BoundaryResolveEvent) (usecase.BoundaryRequest, error) {
	coord, err := event.Coordinate()
	if err != nil {
		return usecase.BoundaryRequest{}, err
	}
	levels, err := event.ParsedLevels()
	if err != nil {
		return usecase.BoundaryRequest{}, err
	}
	return usecase.BoundaryRequest{
		Coordinate:  coord,
		Levels:      levels,
		Description: event.Description,
	}, nil
}

func errorEvent(event *domain.BoundaryResolveEvent, err error) *domain.BoundaryDoneEvent {
	done := &domain.BoundaryDoneEvent{
		RequestID: event.RequestID,
		Error:     err.Error(),
	}
	if appErr, ok := errors.As(err); ok {
		done.ErrorCode = appErr.Code
	}
	return done
}

func summarize(b *domain.ResolvedBoundary) *domain.BoundarySummary {
	return &domain.BoundarySummary{
		Level:      b.Level.String(),
		Name:       b.Name,
		EntityType: b.EntityType,
		GeometryID: b.GeometryID,
		Points:     len(b.Ring),
	}
}
