package changeset

import (
	"context"
	"fmt"

	"github.com/route-dashboard/internal/domain"
	"go.uber.org/zap"
)

// Store - операции хранилища, которые нужны для применения изменений
type Store interface {
	CreateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	UpdateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
}

// Action - фактическая операция над хранилищем для staged-изменения
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionSkip - создание и удаление ещё не сохранённой точки взаимно гасятся
	ActionSkip Action = "skip"
)

// Step - одно изменение буфера и операция, которой оно будет применено.
// TargetID - ID точки в хранилище для update/delete.
type Step struct {
	Change   domain.PendingChange `json:"change"`
	Action   Action               `json:"action"`
	TargetID int64                `json:"targetId"`
}

// AppliedChange - успешно применённый шаг
type AppliedChange struct {
	StagedID int64            `json:"stagedId"`
	Action   Action           `json:"action"`
	Location *domain.Location `json:"location,omitempty"`
}

// Result - итог применения буфера
type Result struct {
	Applied []AppliedChange `json:"applied"`
	Skipped []int64         `json:"skipped"`
}

// CommitError - первый отказ хранилища. Изменения до Index уже применены, после - нет.
type CommitError struct {
	// Index - позиция изменения в буфере, начиная с 1
	Index   int
	Change  domain.PendingChange
	Action  Action
	Applied []AppliedChange
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("apply change #%d (%s id=%d): %v", e.Index, e.Action, e.Change.ID, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Plan вычисляет итоговую операцию для каждого изменения в порядке буфера.
// Удаление точки, созданной в этом же буфере, пропускается; её обновление превращается в создание.
// Шаги, уже выполненные прошлым неудачным сохранением, не повторяются: сохранённое создание
// становится обновлением созданной точки, выполненное удаление пропускается.
func Plan(buf *Buffer) []Step {
	changes := buf.Changes()
	steps := make([]Step, 0, len(changes))
	for _, ch := range changes {
		step := Step{Change: ch, Action: Action(ch.Type), TargetID: ch.ID}

		storeID, created := buf.StoredID(ch.ID)
		switch {
		case ch.Type == domain.ChangeDelete && buf.DeleteApplied(ch.ID):
			step.Action = ActionSkip
		case created:
			step.TargetID = storeID
			if ch.Type != domain.ChangeDelete {
				step.Action = ActionUpdate
			}
		case buf.IsLocal(ch.ID):
			switch ch.Type {
			case domain.ChangeDelete:
				step.Action = ActionSkip
			case domain.ChangeUpdate:
				step.Action = ActionCreate
			}
		}
		steps = append(steps, step)
	}
	return steps
}

// Reconciler последовательно применяет буфер к хранилищу
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler создаёт Reconciler
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// Apply применяет изменения по одному в порядке буфера.
// На первой ошибке возвращает *CommitError; изменения остаются в буфере, а применённые
// шаги отмечаются через MarkApplied и при повторе не дублируются. Отката нет.
// При успехе буфер очищается.
func (r *Reconciler) Apply(ctx context.Context, buf *Buffer) (*Result, error) {
	steps := Plan(buf)
	result := &Result{
		Applied: make([]AppliedChange, 0, len(steps)),
		Skipped: []int64{},
	}

	for i, step := range steps {
		if step.Action == ActionSkip {
			result.Skipped = append(result.Skipped, step.Change.ID)
			continue
		}

		applied, err := r.applyStep(ctx, step)
		if err != nil {
			r.logger.Warn("Commit aborted",
				zap.Int("index", i+1),
				zap.Int("total", len(steps)),
				zap.Int64("id", step.Change.ID),
				zap.String("action", string(step.Action)),
				zap.Int("applied", len(result.Applied)),
				zap.Error(err))
			buf.MarkApplied(result.Applied)
			return nil, &CommitError{
				Index:   i + 1,
				Change:  step.Change,
				Action:  step.Action,
				Applied: result.Applied,
				Err:     err,
			}
		}
		result.Applied = append(result.Applied, *applied)
	}

	buf.Clear()

	r.logger.Info("Changes committed",
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

func (r *Reconciler) applyStep(ctx context.Context, step Step) (*AppliedChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	applied := &AppliedChange{
		StagedID: step.Change.ID,
		Action:   step.Action,
	}

	switch step.Action {
	case ActionCreate:
		loc := step.Change.Data.Clone()
		loc.ID = 0
		created, err := r.store.CreateLocation(ctx, loc)
		if err != nil {
			return nil, err
		}
		applied.Location = created

	case ActionUpdate:
		loc := step.Change.Data.Clone()
		loc.ID = step.TargetID
		updated, err := r.store.UpdateLocation(ctx, loc)
		if err != nil {
			return nil, err
		}
		applied.Location = updated

	case ActionDelete:
		if err := r.store.DeleteLocation(ctx, step.TargetID); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}

	return applied, nil
}
