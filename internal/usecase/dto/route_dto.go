package dto

import (
	"github.com/route-dashboard/internal/domain"
)

// CreateRouteRequest - создание маршрута. Если slug не задан, он строится из name.
type CreateRouteRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Slug        string  `json:"slug" validate:"omitempty,slug,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateRouteRequest - частичное обновление маршрута
type UpdateRouteRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,slug,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// ToPatch конвертирует запрос в domain.RoutePatch
func (r UpdateRouteRequest) ToPatch() domain.RoutePatch {
	return domain.RoutePatch{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
	}
}

// RouteDetailResponse - маршрут вместе с его точками и последними изменениями
type RouteDetailResponse struct {
	*domain.Route
	Locations     []LocationView           `json:"locations"`
	RecentChanges []*domain.LocationChange `json:"recentChanges"`
}
