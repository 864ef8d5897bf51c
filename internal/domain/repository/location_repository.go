package repository

import (
	"context"

	"github.com/route-dashboard/internal/domain"
)

// LocationRepository определяет методы для работы с точками доставки
type LocationRepository interface {
	// GetByID возвращает точку по ID
	GetByID(ctx context.Context, id int64) (*domain.Location, error)

	// ListByRoute возвращает точки маршрута, отсортированные по code
	ListByRoute(ctx context.Context, routeID int64) ([]*domain.Location, error)

	// Create вставляет точку и возвращает сохранённую запись
	Create(ctx context.Context, loc *domain.Location) (*domain.Location, error)

	// Update полностью заменяет точку по ID
	Update(ctx context.Context, loc *domain.Location) (*domain.Location, error)

	// Delete удаляет точку и возвращает удалённую запись
	Delete(ctx context.Context, id int64) (*domain.Location, error)

	// FindByCode возвращает все точки с данным кодом (кроме excludeID) вместе с их маршрутами
	FindByCode(ctx context.Context, code int, excludeID *int64) ([]domain.DuplicateLocation, error)
}
