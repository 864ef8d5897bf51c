package repository

import (
	"context"
	"time"

	"github.com/route-dashboard/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значения из кеша
	Delete(ctx context.Context, keys ...string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetRouteLocations получает точки маршрута из кеша (nil при промахе)
	GetRouteLocations(ctx context.Context, routeID int64) ([]*domain.Location, error)

	// SetRouteLocations сохраняет точки маршрута в кеше
	SetRouteLocations(ctx context.Context, routeID int64, locations []*domain.Location, ttl time.Duration) error

	// InvalidateRoutes сбрасывает кеш точек для маршрутов
	InvalidateRoutes(ctx context.Context, routeIDs ...int64) error
}
