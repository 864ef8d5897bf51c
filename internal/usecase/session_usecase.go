package usecase

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/route-dashboard/internal/changeset"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/validator"
	"github.com/route-dashboard/internal/usecase/dto"
	"go.uber.org/zap"
)

// DefaultSessionIdleTTL - время жизни неактивной сессии по умолчанию
const DefaultSessionIdleTTL = time.Hour

// LocationStore - хранилище точек для сессий: применение изменений и проверка кода
type LocationStore interface {
	changeset.Store
	CheckDuplicate(ctx context.Context, code int, excludeID *int64) (*domain.DuplicateCheckResult, error)
}

// Session - сессия редактирования точек одного маршрута
type Session struct {
	ID        uuid.UUID
	RouteID   int64
	RouteSlug string

	flow      changeset.EditFlow
	debouncer *changeset.Debouncer

	// stageMu сериализует проверку кода и постановку изменения
	stageMu sync.Mutex

	mu           sync.Mutex
	nextTempID   int64
	createdAt    time.Time
	lastActivity time.Time
}

func (s *Session) tempID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTempID--
	return s.nextTempID
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) response() *dto.SessionResponse {
	s.mu.Lock()
	createdAt, lastActivity := s.createdAt, s.lastActivity
	s.mu.Unlock()

	return &dto.SessionResponse{
		ID:                s.ID.String(),
		RouteID:           s.RouteID,
		RouteSlug:         s.RouteSlug,
		Mode:              s.flow.Mode(),
		Pending:           s.flow.Pending(),
		HasUnsavedChanges: s.flow.HasUnsavedChanges(),
		CreatedAt:         createdAt,
		LastActivityAt:    lastActivity,
	}
}

// SessionUseCase хранит сессии редактирования в памяти процесса
type SessionUseCase struct {
	store     LocationStore
	routeRepo repository.RouteRepository
	clock     domain.Clock
	debounce  time.Duration
	idleTTL   time.Duration
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionUseCase(
	store LocationStore,
	routeRepo repository.RouteRepository,
	clock domain.Clock,
	debounce time.Duration,
	idleTTL time.Duration,
	logger *zap.Logger,
) *SessionUseCase {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	return &SessionUseCase{
		store:     store,
		routeRepo: routeRepo,
		clock:     clock,
		debounce:  debounce,
		idleTTL:   idleTTL,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Open открывает сессию для маршрута. По умолчанию изменения буферизуются.
func (uc *SessionUseCase) Open(ctx context.Context, slug string, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	route, err := uc.routeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	mode := changeset.Mode(req.Mode)
	if mode == "" {
		mode = changeset.ModeBuffered
	}

	id := uuid.New()
	reconciler := changeset.NewReconciler(uc.store, uc.logger.With(
		zap.String("session_id", id.String()),
		zap.Int64("route_id", route.ID),
	))

	var flow changeset.EditFlow
	if mode == changeset.ModeImmediate {
		flow = changeset.NewImmediateFlow(reconciler)
	} else {
		flow = changeset.NewBufferedFlow(reconciler)
	}

	now := uc.clock.Now()
	s := &Session{
		ID:           id,
		RouteID:      route.ID,
		RouteSlug:    route.Slug,
		flow:         flow,
		debouncer:    changeset.NewDebouncer(uc.debounce),
		createdAt:    now,
		lastActivity: now,
	}

	uc.mu.Lock()
	uc.sessions[id] = s
	uc.mu.Unlock()

	uc.logger.Info("Edit session opened",
		zap.String("session_id", id.String()),
		zap.String("route", route.Slug),
		zap.String("mode", string(mode)))

	return s.response(), nil
}

// Get возвращает состояние сессии
func (uc *SessionUseCase) Get(id string) (*dto.SessionResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}
	return s.response(), nil
}

// Close закрывает сессию, несохранённые изменения теряются
func (uc *SessionUseCase) Close(id string) error {
	s, err := uc.session(id)
	if err != nil {
		return err
	}

	uc.mu.Lock()
	delete(uc.sessions, s.ID)
	uc.mu.Unlock()

	uc.logger.Info("Edit session closed",
		zap.String("session_id", s.ID.String()),
		zap.Bool("had_unsaved_changes", s.flow.HasUnsavedChanges()))
	return nil
}

// Stage ставит изменение в сессию. create/update проходят проверку кода с учётом
// уже накопленных изменений; при конфликте ничего не ставится.
func (uc *SessionUseCase) Stage(ctx context.Context, id string, req dto.StageChangeRequest) (*dto.StageChangeResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	if req.Data != nil && req.Data.RouteID == 0 {
		req.Data.RouteID = s.RouteID
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	s.stageMu.Lock()
	defer s.stageMu.Unlock()

	snapshot := s.flow.Snapshot()

	change, err := uc.buildChange(s, snapshot, req)
	if err != nil {
		return nil, err
	}

	if change.Type != domain.ChangeDelete {
		conflicts, err := uc.findConflicts(ctx, snapshot, change.Data.Code, change.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, duplicateCodeError(change.Data.Code, conflicts)
		}
	}

	applied, err := s.flow.Stage(ctx, change)
	if err != nil {
		return nil, uc.stageError(s, err)
	}

	s.touch(uc.clock.Now())

	uc.logger.Debug("Change staged",
		zap.String("session_id", s.ID.String()),
		zap.Int64("id", change.ID),
		zap.String("type", string(change.Type)))

	return &dto.StageChangeResponse{
		Change:  change,
		Applied: applied,
		Session: s.response(),
	}, nil
}

// Discard очищает буфер сессии
func (uc *SessionUseCase) Discard(id string) (*dto.SessionResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	if err := s.flow.Discard(); err != nil {
		if stderrors.Is(err, changeset.ErrCommitInProgress) {
			return nil, errors.ErrCommitInProgress
		}
		return nil, errors.ErrInternalServer.Wrap(err)
	}

	s.touch(uc.clock.Now())
	return s.response(), nil
}

// Commit сохраняет накопленные изменения. При частичной ошибке уже применённые
// изменения остаются в хранилище, а буфер сохраняется для повтора.
func (uc *SessionUseCase) Commit(ctx context.Context, id string) (*changeset.Result, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	result, err := s.flow.Commit(ctx)
	s.touch(uc.clock.Now())
	if err != nil {
		if stderrors.Is(err, changeset.ErrCommitInProgress) {
			return nil, errors.ErrCommitInProgress
		}
		var commitErr *changeset.CommitError
		if stderrors.As(err, &commitErr) {
			return nil, commitFailedError(commitErr)
		}
		return nil, errors.ErrInternalServer.Wrap(err)
	}

	uc.logger.Info("Session committed",
		zap.String("session_id", s.ID.String()),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// CheckCode - спекулятивная проверка кода во время ввода. Запрос, вытесненный более
// новым запросом той же сессии, возвращает superseded=true.
func (uc *SessionUseCase) CheckCode(ctx context.Context, id string, req dto.CheckCodeRequest) (*dto.CheckCodeResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	var excludeID int64
	if req.ExcludeID != nil {
		excludeID = *req.ExcludeID
	}

	var conflicts []domain.DuplicateLocation
	err = s.debouncer.Do(ctx, func(ctx context.Context) error {
		var err error
		conflicts, err = uc.findConflicts(ctx, s.flow.Snapshot(), req.Code, excludeID)
		return err
	})
	if stderrors.Is(err, changeset.ErrSuperseded) {
		return &dto.CheckCodeResponse{Superseded: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.touch(uc.clock.Now())
	return &dto.CheckCodeResponse{Result: domain.NewDuplicateCheckResult(conflicts)}, nil
}

// SweepExpired закрывает сессии без активности дольше idleTTL и возвращает их количество
func (uc *SessionUseCase) SweepExpired(now time.Time) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	expired := 0
	for id, s := range uc.sessions {
		if now.Sub(s.idleSince()) < uc.idleTTL {
			continue
		}
		delete(uc.sessions, id)
		expired++
		uc.logger.Info("Edit session expired",
			zap.String("session_id", id.String()),
			zap.Int("pending", len(s.flow.Pending())))
	}
	return expired
}

// StartJanitor периодически удаляет неактивные сессии до отмены ctx
func (uc *SessionUseCase) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = uc.idleTTL / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.SweepExpired(uc.clock.Now())
		}
	}
}

// Count - количество открытых сессий
func (uc *SessionUseCase) Count() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.sessions)
}

func (uc *SessionUseCase) session(id string) (*Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrSessionNotFound.WithDetails(map[string]interface{}{"id": id})
	}

	uc.mu.RLock()
	s, ok := uc.sessions[sid]
	uc.mu.RUnlock()
	if !ok {
		return nil, errors.ErrSessionNotFound.WithDetails(map[string]interface{}{"id": id})
	}
	return s, nil
}

// buildChange собирает PendingChange из запроса.
// Отрицательные ID принадлежат сессии: create без id получает следующий временный ID,
// update/delete с отрицательным ID допустимы только для точек, созданных в этой сессии.
func (uc *SessionUseCase) buildChange(s *Session, snapshot *changeset.Buffer, req dto.StageChangeRequest) (domain.PendingChange, error) {
	changeType := domain.ChangeType(req.Type)

	var id int64
	switch {
	case req.ID != nil:
		id = *req.ID
	case changeType == domain.ChangeCreate:
		id = s.tempID()
	default:
		return domain.PendingChange{}, errors.ErrInvalidChange.WithDetails(map[string]interface{}{
			"id": "required for " + req.Type,
		})
	}

	if id == 0 {
		return domain.PendingChange{}, errors.ErrInvalidChange.WithDetails(map[string]interface{}{"id": "must not be zero"})
	}
	if changeType == domain.ChangeCreate && id > 0 {
		return domain.PendingChange{}, errors.ErrInvalidChange.WithDetails(map[string]interface{}{
			"id": "create requires a temporary negative id",
		})
	}
	if changeType != domain.ChangeCreate && id < 0 && !snapshot.IsLocal(id) {
		return domain.PendingChange{}, errors.ErrInvalidChange.WithDetails(map[string]interface{}{
			"id": "unknown temporary id",
		})
	}

	change := domain.PendingChange{ID: id, Type: changeType}
	if changeType != domain.ChangeDelete {
		if req.Data == nil {
			return domain.PendingChange{}, errors.ErrInvalidChange.WithDetails(map[string]interface{}{
				"data": "required for " + req.Type,
			})
		}
		change.Data = req.Data.ToDomain(id)
		if err := validateLocation(change.Data); err != nil {
			return domain.PendingChange{}, err
		}
	}
	return change, nil
}

// findConflicts возвращает точки, с которыми код столкнётся после сохранения буфера:
// сохранённые точки, которые буфер не удаляет и не перекодирует раньше этого изменения
// (применение идёт в порядке буфера), и другие staged create/update с тем же кодом.
func (uc *SessionUseCase) findConflicts(ctx context.Context, snapshot *changeset.Buffer, code int, excludeID int64) ([]domain.DuplicateLocation, error) {
	var exclude *int64
	if excludeID > 0 {
		exclude = &excludeID
	} else if storeID, ok := snapshot.StoredID(excludeID); ok {
		exclude = &storeID
	}

	stored, err := uc.store.CheckDuplicate(ctx, code, exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	conflicts := make([]domain.DuplicateLocation, 0)
	for _, d := range stored.Duplicates {
		if snapshot.Releases(d.ID, code, excludeID) {
			continue
		}
		seen[d.ID] = struct{}{}
		conflicts = append(conflicts, d)
	}

	for _, ch := range snapshot.CodeConflicts(code, excludeID) {
		if _, ok := seen[ch.ID]; ok {
			continue
		}
		if storeID, ok := snapshot.StoredID(ch.ID); ok {
			if _, ok := seen[storeID]; ok {
				continue
			}
		}
		conflicts = append(conflicts, domain.DuplicateLocation{
			ID:       ch.ID,
			Code:     ch.Data.Code,
			Location: ch.Data.Location,
			RouteID:  ch.Data.RouteID,
		})
	}
	return conflicts, nil
}

// stageError переводит ошибки EditFlow в AppError. В немедленном режиме ошибка хранилища
// возвращается как есть (DUPLICATE_CODE, LOCATION_NOT_FOUND).
func (uc *SessionUseCase) stageError(s *Session, err error) error {
	if stderrors.Is(err, changeset.ErrCommitInProgress) {
		return errors.ErrCommitInProgress
	}

	var commitErr *changeset.CommitError
	if stderrors.As(err, &commitErr) {
		if appErr, ok := errors.As(commitErr.Err); ok {
			return appErr
		}
		uc.logger.Error("Immediate change failed",
			zap.String("session_id", s.ID.String()),
			zap.Error(err))
		return commitFailedError(commitErr)
	}

	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	return errors.ErrInvalidChange.WithMessage(err.Error())
}

func commitFailedError(ce *changeset.CommitError) error {
	details := map[string]interface{}{
		"index":   ce.Index,
		"id":      ce.Change.ID,
		"type":    string(ce.Change.Type),
		"action":  string(ce.Action),
		"applied": ce.Applied,
	}
	if appErr, ok := errors.As(ce.Err); ok {
		details["cause"] = appErr.Code
		if appErr.Details != nil {
			details["causeDetails"] = appErr.Details
		}
	} else {
		details["cause"] = ce.Err.Error()
	}
	return errors.ErrCommitFailed.WithDetails(details).Wrap(ce)
}
