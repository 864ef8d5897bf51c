package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"go.uber.org/zap"
)

// RouteLocationsKey - ключ кеша списка точек маршрута
func RouteLocationsKey(routeID int64) string {
	return fmt.Sprintf("route:%d:locations", routeID)
}

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := r.client.Del(ctx, keys...).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.Strings("keys", keys))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetRouteLocations получает точки маршрута из кеша
func (r *cacheRepository) GetRouteLocations(ctx context.Context, routeID int64) ([]*domain.Location, error) {
	data, err := r.Get(ctx, RouteLocationsKey(routeID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var locations []*domain.Location
	if err := sonic.Unmarshal(data, &locations); err != nil {
		r.logger.Error("Failed to unmarshal route locations from cache",
			zap.Int64("route_id", routeID), zap.Error(err))
		return nil, fmt.Errorf("unmarshal route locations: %w", err)
	}
	if locations == nil {
		locations = []*domain.Location{}
	}

	return locations, nil
}

// SetRouteLocations сохраняет точки маршрута в кеше
func (r *cacheRepository) SetRouteLocations(ctx context.Context, routeID int64, locations []*domain.Location, ttl time.Duration) error {
	if locations == nil {
		locations = []*domain.Location{}
	}
	data, err := sonic.Marshal(locations)
	if err != nil {
		r.logger.Error("Failed to marshal route locations", zap.Int64("route_id", routeID), zap.Error(err))
		return fmt.Errorf("marshal route locations: %w", err)
	}

	return r.Set(ctx, RouteLocationsKey(routeID), data, ttl)
}

// InvalidateRoutes сбрасывает кеш точек для маршрутов
func (r *cacheRepository) InvalidateRoutes(ctx context.Context, routeIDs ...int64) error {
	keys := make([]string, 0, len(routeIDs))
	seen := make(map[int64]struct{}, len(routeIDs))
	for _, id := range routeIDs {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, RouteLocationsKey(id))
	}
	return r.Delete(ctx, keys...)
}
