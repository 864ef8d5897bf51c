package repository

import (
	"context"

	"github.com/route-dashboard/internal/domain"
)

// ChangeLogRepository - журнал применённых изменений точек
type ChangeLogRepository interface {
	// Record сохраняет запись; повторная запись того же сообщения игнорируется
	Record(ctx context.Context, change *domain.LocationChange) error

	// ListByRoute возвращает последние изменения маршрута, новые первыми
	ListByRoute(ctx context.Context, routeID int64, limit int) ([]*domain.LocationChange, error)
}
