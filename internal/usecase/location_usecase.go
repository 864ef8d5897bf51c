package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/utils"
	"github.com/route-dashboard/internal/usecase/dto"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LocationUseCase - операции над точками доставки.
// Реализует changeset.Store, поэтому через него проходят и прямые, и отложенные изменения.
type LocationUseCase struct {
	locationRepo repository.LocationRepository
	routeRepo    repository.RouteRepository
	cacheRepo    repository.CacheRepository
	streamRepo   repository.StreamRepository
	clock        domain.Clock
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewLocationUseCase(
	locationRepo repository.LocationRepository,
	routeRepo repository.RouteRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	clock domain.Clock,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *LocationUseCase {
	return &LocationUseCase{
		locationRepo: locationRepo,
		routeRepo:    routeRepo,
		cacheRepo:    cacheRepo,
		streamRepo:   streamRepo,
		clock:        clock,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ListByRoute возвращает точки маршрута. active/priority вычисляются на текущий момент
// и не кешируются.
func (uc *LocationUseCase) ListByRoute(ctx context.Context, slug string, req dto.ListLocationsRequest) (*dto.LocationListResponse, error) {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	locations, err := uc.loadRouteLocations(ctx, route.ID)
	if err != nil {
		return nil, err
	}

	sortBy := req.Sort
	if sortBy == "" {
		sortBy = dto.SortByCode
	}

	now := uc.clock.Now()
	if sortBy == dto.SortByPriority {
		domain.SortByPriority(locations, now)
	}

	return &dto.LocationListResponse{
		Locations:   uc.views(locations, now),
		Total:       len(locations),
		Sort:        sortBy,
		EvaluatedAt: now,
	}, nil
}

// GeoJSON возвращает точки маршрута как FeatureCollection для карты
func (uc *LocationUseCase) GeoJSON(ctx context.Context, slug string) ([]byte, error) {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	locations, err := uc.loadRouteLocations(ctx, route.ID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(locations)),
	}

	for _, loc := range locations {
		point, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{loc.Lng, loc.Lat})
		if err != nil {
			uc.logger.Warn("Skipping location with invalid coordinates",
				zap.Int64("id", loc.ID), zap.Error(err))
			continue
		}

		props := map[string]interface{}{
			"id":       loc.ID,
			"code":     loc.Code,
			"location": loc.Location,
			"delivery": loc.Delivery,
			"routeId":  loc.RouteID,
			"active":   domain.IsPowerModeActive(loc.PowerMode, now),
			"priority": domain.Priority(loc.PowerMode, now),
		}
		if loc.Color != nil {
			props["color"] = *loc.Color
		}
		if loc.PowerMode != nil {
			props["powerMode"] = string(*loc.PowerMode)
		}
		if s := loc.Descriptions.Shortcuts(); !s.IsEmpty() {
			props["shortcuts"] = s
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.FormatInt(loc.ID, 10),
			Geometry:   point,
			Properties: props,
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		uc.logger.Error("Failed to encode GeoJSON", zap.String("slug", slug), zap.Error(err))
		return nil, errors.ErrInternalServer.Wrap(err)
	}
	return data, nil
}

// Get возвращает точку по ID
func (uc *LocationUseCase) Get(ctx context.Context, id int64) (*domain.Location, error) {
	return uc.locationRepo.GetByID(ctx, id)
}

// CheckDuplicate ищет точки с тем же кодом во всех маршрутах
func (uc *LocationUseCase) CheckDuplicate(ctx context.Context, code int, excludeID *int64) (*domain.DuplicateCheckResult, error) {
	duplicates, err := uc.locationRepo.FindByCode(ctx, code, excludeID)
	if err != nil {
		return nil, err
	}
	return domain.NewDuplicateCheckResult(duplicates), nil
}

// CreateLocation проверяет код и создаёт точку
func (uc *LocationUseCase) CreateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueCode(ctx, loc.Code, nil); err != nil {
		return nil, err
	}

	created, err := uc.locationRepo.Create(ctx, loc)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, created.RouteID)
	uc.publish(ctx, domain.ChangeCreate, created)

	uc.logger.Info("Location created",
		zap.Int64("id", created.ID),
		zap.Int("code", created.Code),
		zap.Int64("route_id", created.RouteID))
	return created, nil
}

// UpdateLocation полностью заменяет точку. Перенос в другой маршрут сбрасывает кеш обоих маршрутов.
func (uc *LocationUseCase) UpdateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}

	existing, err := uc.locationRepo.GetByID(ctx, loc.ID)
	if err != nil {
		return nil, err
	}

	if err := uc.ensureUniqueCode(ctx, loc.Code, &loc.ID); err != nil {
		return nil, err
	}

	updated, err := uc.locationRepo.Update(ctx, loc)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, existing.RouteID, updated.RouteID)
	uc.publish(ctx, domain.ChangeUpdate, updated)

	return updated, nil
}

// DeleteLocation удаляет точку
func (uc *LocationUseCase) DeleteLocation(ctx context.Context, id int64) error {
	deleted, err := uc.locationRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	uc.invalidate(ctx, deleted.RouteID)
	uc.publish(ctx, domain.ChangeDelete, deleted)

	uc.logger.Info("Location deleted", zap.Int64("id", id), zap.Int64("route_id", deleted.RouteID))
	return nil
}

func (uc *LocationUseCase) ensureUniqueCode(ctx context.Context, code int, excludeID *int64) error {
	result, err := uc.CheckDuplicate(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if result.HasDuplicate {
		return duplicateCodeError(code, result.Duplicates)
	}
	return nil
}

// loadRouteLocations читает точки маршрута из кеша или из базы.
// Ошибки кеша не прерывают запрос.
func (uc *LocationUseCase) loadRouteLocations(ctx context.Context, routeID int64) ([]*domain.Location, error) {
	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetRouteLocations(ctx, routeID)
		if err != nil {
			uc.logger.Warn("Route locations cache read failed", zap.Int64("route_id", routeID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	locations, err := uc.locationRepo.ListByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetRouteLocations(ctx, routeID, locations, uc.cacheTTL); err != nil {
			uc.logger.Warn("Route locations cache write failed", zap.Int64("route_id", routeID), zap.Error(err))
		}
	}

	// копия, чтобы сортировка не трогала общий срез
	out := make([]*domain.Location, len(locations))
	copy(out, locations)
	return out, nil
}

func (uc *LocationUseCase) views(locations []*domain.Location, now time.Time) []dto.LocationView {
	out := make([]dto.LocationView, 0, len(locations))
	for _, loc := range locations {
		out = append(out, dto.NewLocationView(loc, now))
	}
	return out
}

func (uc *LocationUseCase) invalidate(ctx context.Context, routeIDs ...int64) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.InvalidateRoutes(ctx, routeIDs...); err != nil {
		uc.logger.Warn("Failed to invalidate route cache", zap.Int64s("route_ids", routeIDs), zap.Error(err))
	}
}

// publish отправляет событие в stream:location:changes. Ошибка публикации не откатывает запись.
func (uc *LocationUseCase) publish(ctx context.Context, changeType domain.ChangeType, loc *domain.Location) {
	if uc.streamRepo == nil {
		return
	}

	event := domain.LocationChangeEvent{
		LocationID: loc.ID,
		RouteID:    loc.RouteID,
		Type:       changeType,
		Code:       loc.Code,
		OccurredAt: uc.clock.Now().UTC(),
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamLocationChanges, event); err != nil {
		uc.logger.Warn("Failed to publish location change",
			zap.Int64("id", loc.ID),
			zap.String("type", string(changeType)),
			zap.Error(err))
	}
}

func validateLocation(loc *domain.Location) error {
	if loc == nil {
		return errors.ErrInvalidRequest
	}
	if loc.Code < 1 {
		return errors.ErrValidationFailed.WithDetails(map[string]interface{}{"code": "min"})
	}
	if loc.Location == "" {
		return errors.ErrValidationFailed.WithDetails(map[string]interface{}{"location": "required"})
	}
	if loc.RouteID < 1 {
		return errors.ErrValidationFailed.WithDetails(map[string]interface{}{"routeId": "required"})
	}
	if !utils.ValidateCoordinates(loc.Lat, loc.Lng) {
		return errors.ErrInvalidCoordinates
	}
	if loc.PowerMode != nil && !loc.PowerMode.Valid() {
		return errors.ErrInvalidPowerMode.WithDetails(map[string]interface{}{"powerMode": string(*loc.PowerMode)})
	}
	return nil
}

func duplicateCodeError(code int, duplicates []domain.DuplicateLocation) error {
	return errors.ErrDuplicateCode.WithDetails(map[string]interface{}{
		"code":       code,
		"duplicates": duplicates,
	})
}
