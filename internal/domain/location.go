package domain

import "time"

// Location - точка доставки (вендинговый автомат) в составе маршрута.
// code уникален во всей системе, а не только внутри маршрута.
type Location struct {
	ID           int64        `json:"id" db:"id"`
	Code         int          `json:"code" db:"code"`
	Location     string       `json:"location" db:"location"`
	Delivery     string       `json:"delivery" db:"delivery"`
	Lat          float64      `json:"lat" db:"lat"`
	Lng          float64      `json:"lng" db:"lng"`
	Color        *string      `json:"color,omitempty" db:"color"`
	PowerMode    *PowerMode   `json:"powerMode" db:"power_mode"`
	Descriptions Descriptions `json:"descriptionsObj" db:"descriptions"`
	RouteID      int64        `json:"routeId" db:"route_id"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// Clone возвращает глубокую копию, чтобы staged-изменения не разделяли память с вызывающим
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	c := *l
	if l.Color != nil {
		color := *l.Color
		c.Color = &color
	}
	if l.PowerMode != nil {
		mode := *l.PowerMode
		c.PowerMode = &mode
	}
	if l.Descriptions != nil {
		c.Descriptions = append(Descriptions(nil), l.Descriptions...)
	}
	return &c
}

// DuplicateLocation - существующая точка с тем же кодом, с данными маршрута для сообщения о конфликте
type DuplicateLocation struct {
	ID        int64  `json:"id" db:"id"`
	Code      int    `json:"code" db:"code"`
	Location  string `json:"location" db:"location"`
	RouteID   int64  `json:"routeId" db:"route_id"`
	RouteName string `json:"routeName" db:"route_name"`
	RouteSlug string `json:"routeSlug" db:"route_slug"`
}

// DuplicateCheckResult - результат проверки кода на дубликаты
type DuplicateCheckResult struct {
	HasDuplicate bool                `json:"hasDuplicate"`
	Duplicates   []DuplicateLocation `json:"duplicates"`
}

// NewDuplicateCheckResult собирает результат из списка конфликтующих точек
func NewDuplicateCheckResult(duplicates []DuplicateLocation) *DuplicateCheckResult {
	if duplicates == nil {
		duplicates = []DuplicateLocation{}
	}
	return &DuplicateCheckResult{
		HasDuplicate: len(duplicates) > 0,
		Duplicates:   duplicates,
	}
}

// DeliverySuggestions - фиксированный набор подсказок для поля delivery.
// Поле остаётся свободным текстом.
var DeliverySuggestions = []string{
	"Daily",
	"Weekday",
	"Alt 1",
	"Alt 2",
	"Weekend",
}
