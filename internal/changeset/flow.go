package changeset

import (
	"context"
	"errors"
	"sync"

	"github.com/route-dashboard/internal/domain"
)

// ErrCommitInProgress возвращается, если буфер меняют во время сохранения
var ErrCommitInProgress = errors.New("commit in progress")

// Mode - способ редактирования
type Mode string

const (
	// ModeBuffered - изменения копятся и сохраняются одним Commit
	ModeBuffered Mode = "buffered"
	// ModeImmediate - каждое изменение сразу уходит в хранилище
	ModeImmediate Mode = "immediate"
)

// Valid проверяет режим
func (m Mode) Valid() bool {
	return m == ModeBuffered || m == ModeImmediate
}

// EditFlow - общий интерфейс редактирования, не зависящий от режима
type EditFlow interface {
	Mode() Mode
	// Stage принимает изменение. В немедленном режиме Result описывает применённую операцию.
	Stage(ctx context.Context, change domain.PendingChange) (*Result, error)
	// Commit сохраняет накопленное. В немедленном режиме ничего не делает.
	Commit(ctx context.Context) (*Result, error)
	Discard() error
	Pending() []domain.PendingChange
	HasUnsavedChanges() bool
	// Snapshot возвращает независимую копию буфера
	Snapshot() *Buffer
}

// BufferedFlow - редактирование с отложенным сохранением
type BufferedFlow struct {
	mu         sync.Mutex
	buf        *Buffer
	reconciler *Reconciler
	committing bool
}

// NewBufferedFlow создаёт BufferedFlow
func NewBufferedFlow(reconciler *Reconciler) *BufferedFlow {
	return &BufferedFlow{
		buf:        NewBuffer(),
		reconciler: reconciler,
	}
}

func (f *BufferedFlow) Mode() Mode {
	return ModeBuffered
}

func (f *BufferedFlow) Stage(_ context.Context, change domain.PendingChange) (*Result, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.committing {
		return nil, ErrCommitInProgress
	}
	f.buf.Add(change)
	return nil, nil
}

// Commit применяет снимок буфера. Во время применения буфер заблокирован для изменений;
// при ошибке изменения остаются, а уже выполненные шаги запоминаются для повтора.
// При успехе буфер очищается.
func (f *BufferedFlow) Commit(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	if f.committing {
		f.mu.Unlock()
		return nil, ErrCommitInProgress
	}
	f.committing = true
	snapshot := f.buf.Clone()
	f.mu.Unlock()

	result, err := f.reconciler.Apply(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.committing = false
	if err != nil {
		f.buf = snapshot
		return nil, err
	}
	f.buf.Clear()
	return result, nil
}

func (f *BufferedFlow) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.committing {
		return ErrCommitInProgress
	}
	f.buf.Clear()
	return nil
}

func (f *BufferedFlow) Pending() []domain.PendingChange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Changes()
}

func (f *BufferedFlow) HasUnsavedChanges() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.HasUnsavedChanges()
}

func (f *BufferedFlow) Snapshot() *Buffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Clone()
}

// ImmediateFlow - каждое изменение применяется сразу, буфер всегда пуст
type ImmediateFlow struct {
	reconciler *Reconciler
}

// NewImmediateFlow создаёт ImmediateFlow
func NewImmediateFlow(reconciler *Reconciler) *ImmediateFlow {
	return &ImmediateFlow{reconciler: reconciler}
}

func (f *ImmediateFlow) Mode() Mode {
	return ModeImmediate
}

func (f *ImmediateFlow) Stage(ctx context.Context, change domain.PendingChange) (*Result, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	buf := NewBuffer()
	buf.Add(change)
	return f.reconciler.Apply(ctx, buf)
}

func (f *ImmediateFlow) Commit(context.Context) (*Result, error) {
	return &Result{Applied: []AppliedChange{}, Skipped: []int64{}}, nil
}

func (f *ImmediateFlow) Discard() error {
	return nil
}

func (f *ImmediateFlow) Pending() []domain.PendingChange {
	return []domain.PendingChange{}
}

func (f *ImmediateFlow) HasUnsavedChanges() bool {
	return false
}

func (f *ImmediateFlow) Snapshot() *Buffer {
	return NewBuffer()
}
