package domain

import "fmt"

// ChangeType - тип отложенного изменения
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Valid проверяет тип изменения
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeCreate, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// PendingChange - изменение точки, которое ещё не применено к хранилищу
type PendingChange struct {
	ID   int64      `json:"id"`
	Type ChangeType `json:"type"`
	Data *Location  `json:"data,omitempty"`
}

// Validate проверяет согласованность типа и данных
func (c PendingChange) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("unknown change type %q", c.Type)
	}
	if c.Type != ChangeDelete && c.Data == nil {
		return fmt.Errorf("%s change for id %d requires data", c.Type, c.ID)
	}
	return nil
}
