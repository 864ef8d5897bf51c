package repository

import (
	"context"

	"github.com/route-dashboard/internal/domain"
)

// RouteRepository определяет методы для работы с маршрутами
type RouteRepository interface {
	// List возвращает все маршруты по имени
	List(ctx context.Context) ([]*domain.Route, error)

	// GetBySlug возвращает маршрут по slug
	GetBySlug(ctx context.Context, slug string) (*domain.Route, error)

	// GetByID возвращает маршрут по ID
	GetByID(ctx context.Context, id int64) (*domain.Route, error)

	// Create создаёт маршрут
	Create(ctx context.Context, route *domain.Route) (*domain.Route, error)

	// Update применяет частичное обновление
	Update(ctx context.Context, id int64, patch domain.RoutePatch) (*domain.Route, error)

	// Delete удаляет маршрут вместе со всеми его точками
	Delete(ctx context.Context, id int64) error

	// SlugExists проверяет, занят ли slug другим маршрутом
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
}
