package usecase

import (
	"context"

	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/usecase/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentChangesLimit - сколько последних изменений отдаётся вместе с маршрутом
const recentChangesLimit = 10

type RouteUseCase struct {
	routeRepo     repository.RouteRepository
	locationRepo  repository.LocationRepository
	changeLogRepo repository.ChangeLogRepository
	cacheRepo     repository.CacheRepository
	clock         domain.Clock
	logger        *zap.Logger
}

func NewRouteUseCase(
	routeRepo repository.RouteRepository,
	locationRepo repository.LocationRepository,
	changeLogRepo repository.ChangeLogRepository,
	cacheRepo repository.CacheRepository,
	clock domain.Clock,
	logger *zap.Logger,
) *RouteUseCase {
	return &RouteUseCase{
		routeRepo:     routeRepo,
		locationRepo:  locationRepo,
		changeLogRepo: changeLogRepo,
		cacheRepo:     cacheRepo,
		clock:         clock,
		logger:        logger,
	}
}

func (uc *RouteUseCase) List(ctx context.Context) ([]*domain.Route, error) {
	return uc.routeRepo.List(ctx)
}

// Get возвращает маршрут с точками (по коду) и последними изменениями.
// Точки и журнал читаются параллельно.
func (uc *RouteUseCase) Get(ctx context.Context, slug string) (*dto.RouteDetailResponse, error) {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var (
		locations []*domain.Location
		changes   []*domain.LocationChange
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = uc.locationRepo.ListByRoute(gctx, route.ID)
		return err
	})
	g.Go(func() error {
		var err error
		changes, err = uc.changeLogRepo.ListByRoute(gctx, route.ID, recentChangesLimit)
		if err != nil {
			// журнал вспомогательный, маршрут отдаётся и без него
			uc.logger.Warn("Failed to load recent changes", zap.Int64("route_id", route.ID), zap.Error(err))
			changes = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []*domain.LocationChange{}
	}

	now := uc.clock.Now()
	views := make([]dto.LocationView, 0, len(locations))
	for _, loc := range locations {
		views = append(views, dto.NewLocationView(loc, now))
	}

	return &dto.RouteDetailResponse{
		Route:         route,
		Locations:     views,
		RecentChanges: changes,
	}, nil
}

func (uc *RouteUseCase) Create(ctx context.Context, req dto.CreateRouteRequest) (*domain.Route, error) {
	slug := req.Slug
	if slug == "" {
		slug = domain.Slugify(req.Name)
	}
	if !domain.IsValidSlug(slug) {
		return nil, errors.ErrInvalidSlug.WithDetails(map[string]interface{}{"slug": slug})
	}

	exists, err := uc.routeRepo.SlugExists(ctx, slug, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrDuplicateSlug.WithDetails(map[string]interface{}{"slug": slug})
	}

	route, err := uc.routeRepo.Create(ctx, &domain.Route{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Route created", zap.Int64("id", route.ID), zap.String("slug", route.Slug))
	return route, nil
}

// Update применяет частичное обновление. Смена slug проверяется на уникальность.
func (uc *RouteUseCase) Update(ctx context.Context, slug string, req dto.UpdateRouteRequest) (*domain.Route, error) {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	patch := req.ToPatch()
	if patch.IsEmpty() {
		return route, nil
	}

	if patch.Slug != nil && *patch.Slug != route.Slug {
		if !domain.IsValidSlug(*patch.Slug) {
			return nil, errors.ErrInvalidSlug.WithDetails(map[string]interface{}{"slug": *patch.Slug})
		}
		exists, err := uc.routeRepo.SlugExists(ctx, *patch.Slug, &route.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.ErrDuplicateSlug.WithDetails(map[string]interface{}{"slug": *patch.Slug})
		}
	}

	updated, err := uc.routeRepo.Update(ctx, route.ID, patch)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, route.ID)
	return updated, nil
}

// Delete удаляет маршрут вместе с его точками
func (uc *RouteUseCase) Delete(ctx context.Context, slug string) error {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := uc.routeRepo.Delete(ctx, route.ID); err != nil {
		return err
	}

	uc.invalidate(ctx, route.ID)
	uc.logger.Info("Route deleted", zap.Int64("id", route.ID), zap.String("slug", route.Slug))
	return nil
}

func (uc *RouteUseCase) invalidate(ctx context.Context, routeID int64) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.InvalidateRoutes(ctx, routeID); err != nil {
		uc.logger.Warn("Failed to invalidate route cache", zap.Int64("route_id", routeID), zap.Error(err))
	}
}
