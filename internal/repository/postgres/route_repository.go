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
	tableRoutes = "routes"

	constraintRouteSlug = "routes_slug_key"
)

var routeColumns = []string{"id", "name", "slug", "description", "created_at", "updated_at"}

type routeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRouteRepository(db *DB) repository.RouteRepository {
	return &routeRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *routeRepository) List(ctx context.Context) ([]*domain.Route, error) {
	query, args, err := builder().
		Select(routeColumns...).
		From(tableRoutes).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	routes := make([]*domain.Route, 0)
	if err := r.db.SelectContext(ctx, &routes, query, args...); err != nil {
		r.logger.Error("Failed to list routes", zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	return routes, nil
}

func (r *routeRepository) GetBySlug(ctx context.Context, slug string) (*domain.Route, error) {
	return r.getOne(ctx, squirrel.Eq{"slug": slug})
}

func (r *routeRepository) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *routeRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Route, error) {
	query, args, err := builder().
		Select(routeColumns...).
		From(tableRoutes).
		Where(where).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var route domain.Route
	err = r.db.GetContext(ctx, &route, query, args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRouteNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get route", zap.Any("where", where), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	return &route, nil
}

func (r *routeRepository) Create(ctx context.Context, route *domain.Route) (*domain.Route, error) {
	query, args, err := builder().
		Insert(tableRoutes).
		Columns("name", "slug", "description").
		Values(route.Name, route.Slug, route.Description).
		Suffix("RETURNING " + strings.Join(routeColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var created domain.Route
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&created); err != nil {
		if isUniqueViolation(err, constraintRouteSlug) {
			return nil, errors.ErrDuplicateSlug.WithDetails(map[string]interface{}{"slug": route.Slug})
		}
		r.logger.Error("Failed to create route", zap.String("slug", route.Slug), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return &created, nil
}

func (r *routeRepository) Update(ctx context.Context, id int64, patch domain.RoutePatch) (*domain.Route, error) {
	set := map[string]interface{}{
		"updated_at": squirrel.Expr("now()"),
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		// пустая строка очищает описание
		if *patch.Description == "" {
			set["description"] = nil
		} else {
			set["description"] = *patch.Description
		}
	}

	query, args, err := builder().
		Update(tableRoutes).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(routeColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	var updated domain.Route
	err = r.db.QueryRowxContext(ctx, query, args...).StructScan(&updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrRouteNotFound
	}
	if err != nil {
		if isUniqueViolation(err, constraintRouteSlug) {
			return nil, errors.ErrDuplicateSlug.WithDetails(map[string]interface{}{"slug": *patch.Slug})
		}
		r.logger.Error("Failed to update route", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	return &updated, nil
}

// Delete удаляет маршрут; точки удаляются каскадно (ON DELETE CASCADE)
func (r *routeRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := builder().
		Delete(tableRoutes).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.ErrDatabaseError.Wrap(err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to delete route", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseError.Wrap(err)
	}
	if affected == 0 {
		return errors.ErrRouteNotFound
	}
	return nil
}

func (r *routeRepository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	sub := builder().
		Select("1").
		From(tableRoutes).
		Where(squirrel.Eq{"slug": slug})
	if excludeID != nil {
		sub = sub.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := builder().
		Select().
		Column(squirrel.Expr("EXISTS(?)", sub)).
		ToSql()
	if err != nil {
		return false, errors.ErrDatabaseError.Wrap(err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		r.logger.Error("Failed to check slug", zap.String("slug", slug), zap.Error(err))
		return false, errors.ErrDatabaseError.Wrap(err)
	}
	return exists, nil
}
