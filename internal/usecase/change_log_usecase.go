package usecase

import (
	"context"

	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	defaultChangesLimit = 50
	maxChangesLimit     = 500
)

// ChangeLogUseCase - журнал применённых изменений точек
type ChangeLogUseCase struct {
	changeLogRepo repository.ChangeLogRepository
	routeRepo     repository.RouteRepository
	logger        *zap.Logger
}

func NewChangeLogUseCase(
	changeLogRepo repository.ChangeLogRepository,
	routeRepo repository.RouteRepository,
	logger *zap.Logger,
) *ChangeLogUseCase {
	return &ChangeLogUseCase{
		changeLogRepo: changeLogRepo,
		routeRepo:     routeRepo,
		logger:        logger,
	}
}

// ListByRoute возвращает последние изменения маршрута, новые первыми
func (uc *ChangeLogUseCase) ListByRoute(ctx context.Context, slug string, limit int) ([]*domain.LocationChange, error) {
	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultChangesLimit
	}
	if limit > maxChangesLimit {
		limit = maxChangesLimit
	}

	return uc.changeLogRepo.ListByRoute(ctx, route.ID, limit)
}

// Record сохраняет событие из стрима. messageID делает запись идемпотентной.
func (uc *ChangeLogUseCase) Record(ctx context.Context, messageID string, event *domain.LocationChangeEvent) error {
	change := &domain.LocationChange{
		MessageID:  messageID,
		LocationID: event.LocationID,
		RouteID:    event.RouteID,
		Type:       event.Type,
		Code:       event.Code,
		OccurredAt: event.OccurredAt,
	}

	if err := uc.changeLogRepo.Record(ctx, change); err != nil {
		return err
	}

	uc.logger.Debug("Location change recorded",
		zap.String("message_id", messageID),
		zap.Int64("location_id", event.LocationID),
		zap.String("type", string(event.Type)))
	return nil
}
