package changeset

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded - результат вызова устарел, после него пришёл более новый
var ErrSuperseded = errors.New("superseded by a newer call")

// DefaultDebounce - окно ожидания проверки дубликатов по умолчанию
const DefaultDebounce = 500 * time.Millisecond

// Debouncer выполняет только последний из серии частых вызовов.
// Вызов ждёт окно wait; если за это время или во время выполнения fn пришёл новый вызов,
// старый получает ErrSuperseded, а его контекст отменяется.
type Debouncer struct {
	wait time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewDebouncer создаёт Debouncer. wait <= 0 означает DefaultDebounce.
func NewDebouncer(wait time.Duration) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait}
}

// Wait возвращает окно ожидания
func (d *Debouncer) Wait() time.Duration {
	return d.wait
}

// Do ждёт окно и выполняет fn, если вызов всё ещё последний
func (d *Debouncer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.cancel != nil {
		d.cancel()
	}
	d.cancel = cancel
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.seq == seq {
			d.cancel = nil
		}
		d.mu.Unlock()
	}()

	timer := time.NewTimer(d.wait)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-callCtx.Done():
		if d.superseded(seq) {
			return ErrSuperseded
		}
		return callCtx.Err()
	}

	if d.superseded(seq) {
		return ErrSuperseded
	}

	err := fn(callCtx)

	if d.superseded(seq) {
		return ErrSuperseded
	}
	return err
}

func (d *Debouncer) superseded(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq != seq
}
