package domain

import "time"

// Stream names
const (
	StreamLocationChanges = "stream:location:changes"
)

// LocationChangeEvent - событие о применённом к хранилищу изменении точки
type LocationChangeEvent struct {
	LocationID int64      `json:"location_id"`
	RouteID    int64      `json:"route_id"`
	Type       ChangeType `json:"type"`
	Code       int        `json:"code"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// LocationChange - запись журнала изменений, сохранённая воркером
type LocationChange struct {
	ID         int64      `json:"id" db:"id"`
	MessageID  string     `json:"message_id" db:"message_id"`
	LocationID int64      `json:"location_id" db:"location_id"`
	RouteID    int64      `json:"route_id" db:"route_id"`
	Type       ChangeType `json:"type" db:"change_type"`
	Code       int        `json:"code" db:"code"`
	OccurredAt time.Time  `json:"occurred_at" db:"occurred_at"`
	RecordedAt time.Time  `json:"recorded_at" db:"recorded_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
