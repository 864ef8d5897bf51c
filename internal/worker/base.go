package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseWorker - общая часть воркеров, читающих Redis Stream через consumer group
type BaseWorker struct {
	name          string
	stream        string
	consumerGroup string
	consumerName  string
	logger        *zap.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// NewBaseWorker создает BaseWorker. Имя consumer уникально для процесса: host-pid-suffix.
func NewBaseWorker(name, stream, consumerGroup string, logger *zap.Logger) *BaseWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])

	return &BaseWorker{
		name:          name,
		stream:        stream,
		consumerGroup: consumerGroup,
		consumerName:  consumerName,
		logger: logger.With(
			zap.String("worker", name),
			zap.String("stream", stream),
		),
		stopCh: make(chan struct{}),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Stream() string {
	return w.stream
}

func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

func (w *BaseWorker) ConsumerName() string {
	return w.consumerName
}

func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// Stop сигнализирует циклу воркера завершиться. Повторный вызов ничего не делает.
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.logger.Info("Stopping worker")
	close(w.stopCh)
	w.stopped = true
	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopCh
}

// Pause ждёт d. Возвращает false, если за это время воркер остановлен или ctx отменён.
func (w *BaseWorker) Pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}
