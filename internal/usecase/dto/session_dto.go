package dto

import (
	"time"

	"github.com/route-dashboard/internal/changeset"
	"github.com/route-dashboard/internal/domain"
)

// OpenSessionRequest - открытие сессии редактирования маршрута
type OpenSessionRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=buffered immediate"`
}

// StageChangeRequest - отложенное изменение точки.
// id можно не указывать для create: сессия выдаст временный отрицательный ID.
type StageChangeRequest struct {
	ID   *int64           `json:"id,omitempty"`
	Type string           `json:"type" validate:"required,oneof=create update delete"`
	Data *LocationRequest `json:"data,omitempty"`
}

// SessionResponse - состояние сессии
type SessionResponse struct {
	ID                string                 `json:"id"`
	RouteID           int64                  `json:"routeId"`
	RouteSlug         string                 `json:"routeSlug"`
	Mode              changeset.Mode         `json:"mode"`
	Pending           []domain.PendingChange `json:"pending"`
	HasUnsavedChanges bool                   `json:"hasUnsavedChanges"`
	CreatedAt         time.Time              `json:"createdAt"`
	LastActivityAt    time.Time              `json:"lastActivityAt"`
}

// StageChangeResponse - результат постановки изменения.
// В немедленном режиме Applied содержит то, что уже записано в хранилище.
type StageChangeResponse struct {
	Change  domain.PendingChange `json:"change"`
	Applied *changeset.Result    `json:"applied,omitempty"`
	Session *SessionResponse     `json:"session"`
}

// CheckCodeResponse - ответ на спекулятивную проверку кода
type CheckCodeResponse struct {
	Superseded bool                         `json:"superseded"`
	Result     *domain.DuplicateCheckResult `json:"result,omitempty"`
}

// CheckCodeRequest - параметры спекулятивной проверки кода в сессии
type CheckCodeRequest struct {
	Code      int    `query:"code" validate:"required,min=1"`
	ExcludeID *int64 `query:"excludeId"`
}
