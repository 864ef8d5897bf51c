package domain

import (
	"fmt"
	"sort"
	"time"
)

// PowerMode - правило расписания, по которому точка считается активной на текущую дату.
// Хранится как правило, а не как вычисленный флаг.
type PowerMode string

const (
	PowerModeDaily   PowerMode = "daily"
	PowerModeAlt1    PowerMode = "alt1"
	PowerModeAlt2    PowerMode = "alt2"
	PowerModeWeekday PowerMode = "weekday"
	PowerModeWeekend PowerMode = "weekend"
	PowerModeNotSet  PowerMode = "notset"
)

// Приоритеты для сортировки списка точек
const (
	PriorityInactive = 0
	PriorityUnset    = 1
	PriorityActive   = 2
)

// AllPowerModes возвращает все допустимые значения в порядке отображения
func AllPowerModes() []PowerMode {
	return []PowerMode{
		PowerModeDaily,
		PowerModeAlt1,
		PowerModeAlt2,
		PowerModeWeekday,
		PowerModeWeekend,
		PowerModeNotSet,
	}
}

// Valid проверяет, что значение входит в закрытый enum
func (m PowerMode) Valid() bool {
	switch m {
	case PowerModeDaily, PowerModeAlt1, PowerModeAlt2,
		PowerModeWeekday, PowerModeWeekend, PowerModeNotSet:
		return true
	}
	return false
}

// ParsePowerMode разбирает строку; пустая строка эквивалентна notset
func ParsePowerMode(s string) (PowerMode, error) {
	if s == "" {
		return PowerModeNotSet, nil
	}
	m := PowerMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown power mode %q", s)
	}
	return m, nil
}

// IsActive решает, активен ли режим на дату t (используется локальная дата t).
//
// weekday и weekend пересекаются: с понедельника по четверг активны оба.
func (m PowerMode) IsActive(t time.Time) bool {
	switch m {
	case PowerModeDaily:
		return true
	case PowerModeAlt1:
		return t.Day()%2 == 0
	case PowerModeAlt2:
		return t.Day()%2 == 1
	case PowerModeWeekday:
		wd := t.Weekday()
		return wd >= time.Sunday && wd <= time.Thursday
	case PowerModeWeekend:
		wd := t.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	default:
		return false
	}
}

// IsPowerModeActive - то же, что IsActive, но nil трактуется как notset
func IsPowerModeActive(mode *PowerMode, t time.Time) bool {
	if mode == nil {
		return false
	}
	return mode.IsActive(t)
}

// IsPowerModeSet возвращает false для nil и notset
func IsPowerModeSet(mode *PowerMode) bool {
	return mode != nil && *mode != PowerModeNotSet && *mode != ""
}

// Priority - приоритет точки для сортировки:
// 2 - режим активен, 1 - режим не задан, 0 - задан, но неактивен
func Priority(mode *PowerMode, t time.Time) int {
	if !IsPowerModeSet(mode) {
		return PriorityUnset
	}
	if mode.IsActive(t) {
		return PriorityActive
	}
	return PriorityInactive
}

// SortByPriority сортирует точки по приоритету (по убыванию), затем по коду (по возрастанию).
// Сортировка выполняется на месте и пересчитывается на каждый вызов.
func SortByPriority(locations []*Location, t time.Time) {
	sort.SliceStable(locations, func(i, j int) bool {
		pi := Priority(locations[i].PowerMode, t)
		pj := Priority(locations[j].PowerMode, t)
		if pi != pj {
			return pi > pj
		}
		return locations[i].Code < locations[j].Code
	})
}
