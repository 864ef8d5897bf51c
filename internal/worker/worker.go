package worker

import (
	"context"
	"sync/atomic"
)

// Worker интерфейс для всех воркеров
type Worker interface {
	// Start блокируется до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop останавливает воркер
	Stop() error

	// Name возвращает имя воркера
	Name() string
}

// Stats - счётчики обработанных сообщений воркера
type Stats struct {
	Processed atomic.Int64
	Skipped   atomic.Int64
	Failed    atomic.Int64
}

// StatsSnapshot - значения счётчиков на момент вызова
type StatsSnapshot struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Processed: s.Processed.Load(),
		Skipped:   s.Skipped.Load(),
		Failed:    s.Failed.Load(),
	}
}
