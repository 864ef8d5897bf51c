// Package changelog сохраняет события об изменениях точек из stream:location:changes
// в журнал location_changes.
package changelog

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/worker"
	"go.uber.org/zap"
)

const (
	defaultBatchSize     = 20
	defaultBlock         = 5 * time.Second
	defaultRetryInterval = 200 * time.Millisecond
	defaultClaimIdle     = time.Minute
	errorPause           = time.Second
)

// Recorder сохраняет событие в журнал (usecase.ChangeLogUseCase)
type Recorder interface {
	Record(ctx context.Context, messageID string, event *domain.LocationChangeEvent) error
}

// Config - параметры чтения и повторов
type Config struct {
	ConsumerGroup string
	BatchSize     int
	// Block - сколько ждать новых сообщений за одно чтение
	Block         time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	// ClaimIdle - через сколько неподтверждённое сообщение забирается повторно;
	// с тем же периодом воркер просматривает pending группы
	ClaimIdle time.Duration
}

// Worker читает события изменений и записывает их в журнал.
// Сообщение подтверждается после записи или если его нельзя разобрать;
// при исчерпании повторов оно остаётся в pending группы, и раз в ClaimIdle воркер
// забирает оттуда простаивающие сообщения (свои и упавших consumer'ов) на новую попытку.
type Worker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	recorder   Recorder
	cfg        Config
	stats      worker.Stats

	// claimCursor и lastClaim меняются только из цикла Start
	claimCursor string
	lastClaim   time.Time
}

// NewWorker создает Worker
func NewWorker(streamRepo repository.StreamRepository, recorder Recorder, cfg Config, logger *zap.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultBlock
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.ClaimIdle <= 0 {
		cfg.ClaimIdle = defaultClaimIdle
	}

	return &Worker{
		BaseWorker:  worker.NewBaseWorker("location-changelog", domain.StreamLocationChanges, cfg.ConsumerGroup, logger),
		streamRepo:  streamRepo,
		recorder:    recorder,
		cfg:         cfg,
		claimCursor: "0-0",
		lastClaim:   time.Now(),
	}
}

// Stats возвращает счётчики обработки
func (w *Worker) Stats() worker.StatsSnapshot {
	return w.stats.Snapshot()
}

// Start запускает воркер
func (w *Worker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting change log worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.cfg.BatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.Stream(), w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped", zap.Any("stats", w.Stats()))
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled", zap.Any("stats", w.Stats()))
			return ctx.Err()
		default:
		}

		if _, err := w.ProcessBatch(ctx); err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			w.Pause(ctx, errorPause)
		}
	}
}

// ProcessBatch читает одну пачку новых сообщений и возвращает количество прочитанных.
// Если с прошлого просмотра pending прошло ClaimIdle, сначала обрабатываются забытые сообщения.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	total := 0
	if time.Since(w.lastClaim) >= w.cfg.ClaimIdle {
		n, err := w.ReclaimIdle(ctx)
		if err != nil {
			return 0, err
		}
		total += n
	}

	messages, err := w.streamRepo.ConsumeBatch(ctx, w.Stream(), w.ConsumerGroup(), w.ConsumerName(), w.cfg.BatchSize, w.cfg.Block)
	if err != nil {
		return total, fmt.Errorf("failed to consume batch: %w", err)
	}
	w.handle(ctx, messages)

	return total + len(messages), nil
}

// ReclaimIdle забирает одну пачку сообщений, простаивающих в pending дольше ClaimIdle,
// и обрабатывает их как новые. Курсор запоминается, так что следующие вызовы
// идут дальше по pending, а после конца начинают сначала.
func (w *Worker) ReclaimIdle(ctx context.Context) (int, error) {
	w.lastClaim = time.Now()

	messages, next, err := w.streamRepo.ClaimIdle(ctx, w.Stream(), w.ConsumerGroup(), w.ConsumerName(), w.cfg.ClaimIdle, w.claimCursor, w.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim idle messages: %w", err)
	}
	w.claimCursor = next
	if w.claimCursor == "" {
		w.claimCursor = "0-0"
	}

	if len(messages) > 0 {
		w.Logger().Info("Retrying idle messages",
			zap.Int("count", len(messages)),
			zap.String("next", w.claimCursor))
	}
	w.handle(ctx, messages)

	return len(messages), nil
}

// handle записывает сообщения в журнал и подтверждает записанные и битые
func (w *Worker) handle(ctx context.Context, messages []domain.StreamMessage) {
	if len(messages) == 0 {
		return
	}

	ack := make([]string, 0, len(messages))
	for _, msg := range messages {
		event, err := parseEvent(msg)
		if err != nil {
			w.Logger().Warn("Skipping unparseable message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			w.stats.Skipped.Add(1)
			ack = append(ack, msg.ID)
			continue
		}

		if err := w.record(ctx, msg.ID, event); err != nil {
			w.Logger().Error("Failed to record location change, leaving pending",
				zap.String("message_id", msg.ID),
				zap.Int64("location_id", event.LocationID),
				zap.Error(err))
			w.stats.Failed.Add(1)
			continue
		}

		w.stats.Processed.Add(1)
		ack = append(ack, msg.ID)
	}

	if len(ack) > 0 {
		if err := w.streamRepo.AckMessages(ctx, w.Stream(), w.ConsumerGroup(), ack); err != nil {
			// запись идемпотентна по message_id, повторная доставка безопасна
			w.Logger().Error("Failed to ack messages", zap.Int("count", len(ack)), zap.Error(err))
		}
	}
}

func (w *Worker) record(ctx context.Context, messageID string, event *domain.LocationChangeEvent) error {
	return backoff.Retry(
		func() error {
			return w.recorder.Record(ctx, messageID, event)
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(w.cfg.RetryInterval), uint64(w.cfg.MaxRetries)),
			ctx,
		),
	)
}

func parseEvent(msg domain.StreamMessage) (*domain.LocationChangeEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("message has no data field")
	}

	var event domain.LocationChangeEvent
	if err := sonic.UnmarshalString(msg.Data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.LocationID == 0 || !event.Type.Valid() {
		return nil, fmt.Errorf("incomplete event: location_id=%d type=%q", event.LocationID, event.Type)
	}
	return &event, nil
}
