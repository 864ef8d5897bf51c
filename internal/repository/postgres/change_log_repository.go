package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/pkg/errors"
	"go.uber.org/zap"
)

const tableLocationChanges = "location_changes"

type changeLogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewChangeLogRepository(db *DB) repository.ChangeLogRepository {
	return &changeLogRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *changeLogRepository) Record(ctx context.Context, change *domain.LocationChange) error {
	query, args, err := builder().
		Insert(tableLocationChanges).
		Columns("message_id", "location_id", "route_id", "change_type", "code", "occurred_at").
		Values(change.MessageID, change.LocationID, change.RouteID, string(change.Type), change.Code, change.OccurredAt).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		ToSql()
	if err != nil {
		return errors.ErrDatabaseError.Wrap(err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to record location change",
			zap.String("message_id", change.MessageID),
			zap.Int64("location_id", change.LocationID),
			zap.Error(err))
		return errors.ErrDatabaseError.Wrap(err)
	}
	return nil
}

func (r *changeLogRepository) ListByRoute(ctx context.Context, routeID int64, limit int) ([]*domain.LocationChange, error) {
	query, args, err := builder().
		Select("id", "message_id", "location_id", "route_id", "change_type", "code", "occurred_at", "recorded_at").
		From(tableLocationChanges).
		Where(squirrel.Eq{"route_id": routeID}).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.ErrDatabaseError.Wrap(err)
	}

	changes := make([]*domain.LocationChange, 0)
	if err := r.db.SelectContext(ctx, &changes, query, args...); err != nil {
		r.logger.Error("Failed to list location changes", zap.Int64("route_id", routeID), zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	return changes, nil
}
