package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	tableLocations = "locations"

	constraintLocationCode      = "locations_code_key"
	constraintLocationPowerMode = "locations_power_mode_check"
)

// descriptions читается как text, чтобы оба драйвера отдавали сырой JSON без перестановки ключей
var locationColumns = []string{
	"id", "code", "location", "delivery", "lat", "lng", "color", "power_mode",
	"descriptions::text AS descriptions", "route_id", "created_at", "updated_at",
}

type locationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLocationRepository(db *DB) repository.LocationRepository {
	return &locationRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	query, args, err := builder().
		Select(locationColumns...).
		From(tableLocations).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var loc domain.Location
	err = r.db.GetContext(ctx, &loc, query, args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrLocationNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get location by ID", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return &loc, nil
}

func (r *locationRepository) ListByRoute(ctx context.Context, routeID int64) ([]*domain.Location, error) {
	query, args, err := builder().
		Select(locationColumns...).
		From(tableLocations).
		Where(squirrel.Eq{"route_id": routeID}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	locations := make([]*domain.Location, 0)
	if err := r.db.SelectContext(ctx, &locations, query, args...); err != nil {
		r.logger.Error("Failed to list route locations", zap.Int64("route_id", routeID), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	query, args, err := builder().
		Insert(tableLocations).
		Columns("code", "location", "delivery", "lat", "lng", "color", "power_mode", "descriptions", "route_id").
		Values(loc.Code, loc.Location, loc.Delivery, loc.Lat, loc.Lng, loc.Color, loc.PowerMode, loc.Descriptions, loc.RouteID).
		Suffix("RETURNING " + strings.Join(locationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var created domain.Location
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&created); err != nil {
		return nil, r.mapWriteError("create", loc, err)
	}

	r.logger.Debug("Location created", zap.Int64("id", created.ID), zap.Int("code", created.Code))
	return &created, nil
}

func (r *locationRepository) Update(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	query, args, err := builder().
		Update(tableLocations).
		SetMap(map[string]interface{}{
			"code":         loc.Code,
			"location":     loc.Location,
			"delivery":     loc.Delivery,
			"lat":          loc.Lat,
			"lng":          loc.Lng,
			"color":        loc.Color,
			"power_mode":   loc.PowerMode,
			"descriptions": loc.Descriptions,
			"route_id":     loc.RouteID,
			"updated_at":   squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": loc.ID}).
		Suffix("RETURNING " + strings.Join(locationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var updated domain.Location
	err = r.db.QueryRowxContext(ctx, query, args...).StructScan(&updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrLocationNotFound
	}
	if err != nil {
		return nil, r.mapWriteError("update", loc, err)
	}

	return &updated, nil
}

func (r *locationRepository) Delete(ctx context.Context, id int64) (*domain.Location, error) {
	query, args, err := builder().
		Delete(tableLocations).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(locationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var deleted domain.Location
	err = r.db.QueryRowxContext(ctx, query, args...).StructScan(&deleted)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrLocationNotFound
	}
	if err != nil {
		r.logger.Error("Failed to delete location", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return &deleted, nil
}

func (r *locationRepository) FindByCode(ctx context.Context, code int, excludeID *int64) ([]domain.DuplicateLocation, error) {
	q := builder().
		Select("l.id", "l.code", "l.location", "l.route_id", "r.name AS route_name", "r.slug AS route_slug").
		From(tableLocations + " l").
		Join(tableRoutes + " r ON r.id = l.route_id").
		Where(squirrel.Eq{"l.code": code}).
		OrderBy("l.id")
	if excludeID != nil {
		q = q.Where(squirrel.NotEq{"l.id": *excludeID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	duplicates := make([]domain.DuplicateLocation, 0)
	if err := r.db.SelectContext(ctx, &duplicates, query, args...); err != nil {
		r.logger.Error("Failed to find locations by code", zap.Int("code", code), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return duplicates, nil
}

// mapWriteError переводит нарушения ограничений в пользовательские ошибки
func (r *locationRepository) mapWriteError(op string, loc *domain.Location, err error) error {
	switch {
	case isUniqueViolation(err, constraintLocationCode):
		return errors.ErrDuplicateCode.WithDetails(map[string]interface{}{"code": loc.Code})
	case isForeignKeyViolation(err):
		return errors.ErrRouteNotFound.WithDetails(map[string]interface{}{"routeId": loc.RouteID})
	case isCheckViolation(err):
		_, constraint := pgErrorCode(err)
		if constraint == constraintLocationPowerMode {
			return errors.ErrInvalidPowerMode
		}
		return errors.ErrInvalidCoordinates
	}

	r.logger.Error("Failed to write location",
		zap.String("op", op),
		zap.Int64("id", loc.ID),
		zap.Int("code", loc.Code),
		zap.Error(err))
	return errors.ErrDatabaseError.Wrap(err)
}
