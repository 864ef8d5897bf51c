package domain

import "time"

// Clock - источник текущего времени для правил расписания
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает реальное время в заданной временной зоне.
// Если Location не задан, используется time.Local.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock всегда возвращает одно и то же время. Используется в тестах.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
