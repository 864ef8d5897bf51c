package handler

import (
	"context"

	"github.com/route-dashboard/internal/changeset"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/usecase/dto"
)

// RouteService - операции над маршрутами (usecase.RouteUseCase)
type RouteService interface {
	List(ctx context.Context) ([]*domain.Route, error)
	Get(ctx context.Context, slug string) (*dto.RouteDetailResponse, error)
	Create(ctx context.Context, req dto.CreateRouteRequest) (*domain.Route, error)
	Update(ctx context.Context, slug string, req dto.UpdateRouteRequest) (*domain.Route, error)
	Delete(ctx context.Context, slug string) error
}

// ChangeLogService - журнал изменений (usecase.ChangeLogUseCase)
type ChangeLogService interface {
	ListByRoute(ctx context.Context, slug string, limit int) ([]*domain.LocationChange, error)
}

// LocationService - операции над точками (usecase.LocationUseCase)
type LocationService interface {
	ListByRoute(ctx context.Context, slug string, req dto.ListLocationsRequest) (*dto.LocationListResponse, error)
	GeoJSON(ctx context.Context, slug string) ([]byte, error)
	CheckDuplicate(ctx context.Context, code int, excludeID *int64) (*domain.DuplicateCheckResult, error)
	CreateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	UpdateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
}

// SessionService - сессии редактирования (usecase.SessionUseCase)
type SessionService interface {
	Open(ctx context.Context, slug string, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Get(id string) (*dto.SessionResponse, error)
	Close(id string) error
	Stage(ctx context.Context, id string, req dto.StageChangeRequest) (*dto.StageChangeResponse, error)
	Discard(id string) (*dto.SessionResponse, error)
	Commit(ctx context.Context, id string) (*changeset.Result, error)
	CheckCode(ctx context.Context, id string, req dto.CheckCodeRequest) (*dto.CheckCodeResponse, error)
}
