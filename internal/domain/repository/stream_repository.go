package repository

import (
	"context"
	"time"

	"github.com/route-dashboard/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch читает до maxCount сообщений, ожидая не дольше block
	ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int, block time.Duration) ([]domain.StreamMessage, error)

	// ClaimIdle забирает на consumer до count сообщений, которые висят в pending группы
	// без подтверждения дольше minIdle, начиная с ID start. Возвращает ID для следующего
	// вызова; "0-0" означает, что pending просмотрен до конца.
	ClaimIdle(ctx context.Context, stream, group, consumer string, minIdle time.Duration, start string, count int) ([]domain.StreamMessage, string, error)

	// AckMessages подтверждает обработку сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
