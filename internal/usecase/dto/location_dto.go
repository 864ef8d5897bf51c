package dto

import (
	"time"

	"github.com/route-dashboard/internal/domain"
)

// LocationRequest - тело создания/замены точки
type LocationRequest struct {
	Code         int                 `json:"code" validate:"required,min=1"`
	Location     string              `json:"location" validate:"required,max=200"`
	Delivery     string              `json:"delivery" validate:"max=100"`
	Lat          float64             `json:"lat" validate:"min=-90,max=90"`
	Lng          float64             `json:"lng" validate:"min=-180,max=180"`
	Color        *string             `json:"color,omitempty" validate:"omitempty,hexcolor"`
	PowerMode    *string             `json:"powerMode,omitempty" validate:"omitempty,powermode"`
	Descriptions domain.Descriptions `json:"descriptionsObj,omitempty"`
	RouteID      int64               `json:"routeId" validate:"required,min=1"`
}

// ToDomain конвертирует запрос в domain.Location. Пустой powerMode трактуется как null.
func (r *LocationRequest) ToDomain(id int64) *domain.Location {
	loc := &domain.Location{
		ID:           id,
		Code:         r.Code,
		Location:     r.Location,
		Delivery:     r.Delivery,
		Lat:          r.Lat,
		Lng:          r.Lng,
		Color:        r.Color,
		Descriptions: r.Descriptions,
		RouteID:      r.RouteID,
	}
	if r.PowerMode != nil && *r.PowerMode != "" {
		mode := domain.PowerMode(*r.PowerMode)
		loc.PowerMode = &mode
	}
	if loc.Descriptions == nil {
		loc.Descriptions = domain.Descriptions{}
	}
	return loc
}

// LocationView - точка с вычисленными на момент запроса полями
type LocationView struct {
	*domain.Location
	Active    bool              `json:"active"`
	Priority  int               `json:"priority"`
	Shortcuts *domain.Shortcuts `json:"shortcuts,omitempty"`
}

// NewLocationView вычисляет active/priority на момент now
func NewLocationView(loc *domain.Location, now time.Time) LocationView {
	view := LocationView{
		Location: loc,
		Active:   domain.IsPowerModeActive(loc.PowerMode, now),
		Priority: domain.Priority(loc.PowerMode, now),
	}
	if s := loc.Descriptions.Shortcuts(); !s.IsEmpty() {
		view.Shortcuts = &s
	}
	return view
}

// LocationListResponse - список точек маршрута
type LocationListResponse struct {
	Locations []LocationView `json:"locations"`
	Total     int            `json:"total"`
	Sort      string         `json:"sort"`
	// EvaluatedAt - момент, на который вычислены active/priority
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Порядок сортировки списка точек
const (
	SortByCode     = "code"
	SortByPriority = "priority"
)

// ListLocationsRequest - параметры списка точек маршрута
type ListLocationsRequest struct {
	Sort string `query:"sort" validate:"omitempty,oneof=code priority"`
}

// CheckDuplicateRequest - параметры проверки кода
type CheckDuplicateRequest struct {
	Code      int    `query:"code" validate:"required,min=1"`
	ExcludeID *int64 `query:"excludeId" validate:"omitempty"`
}

// DeleteLocationResponse - ответ на удаление точки
type DeleteLocationResponse struct {
	ID int64 `json:"id"`
}
