// Package changeset holds staged location mutations and replays them against the store.
//
// A Buffer is owned by a single edit flow and is not safe for concurrent use on its own.
package changeset

import "github.com/route-dashboard/internal/domain"

// Buffer - упорядоченный набор отложенных изменений, ключ - ID точки.
// Повторное изменение того же ID полностью заменяет предыдущее и сохраняет его позицию.
//
// После частичного сохранения буфер помнит, что уже попало в хранилище:
// ID созданных точек (stored) и применённые удаления (deleted), чтобы повтор
// не создавал точки второй раз.
type Buffer struct {
	order   []int64
	changes map[int64]domain.PendingChange
	local   map[int64]struct{}
	stored  map[int64]int64
	deleted map[int64]struct{}
}

// NewBuffer создаёт пустой буфер
func NewBuffer() *Buffer {
	return &Buffer{
		changes: make(map[int64]domain.PendingChange),
		local:   make(map[int64]struct{}),
		stored:  make(map[int64]int64),
		deleted: make(map[int64]struct{}),
	}
}

// Add вставляет или заменяет изменение для change.ID
func (b *Buffer) Add(change domain.PendingChange) {
	if _, ok := b.changes[change.ID]; !ok {
		b.order = append(b.order, change.ID)
	}
	if change.Type == domain.ChangeCreate {
		b.local[change.ID] = struct{}{}
	}
	delete(b.deleted, change.ID)
	change.Data = change.Data.Clone()
	b.changes[change.ID] = change
}

// Get возвращает изменение по ID
func (b *Buffer) Get(id int64) (domain.PendingChange, bool) {
	c, ok := b.changes[id]
	return c, ok
}

// Changes возвращает изменения в порядке первой вставки
func (b *Buffer) Changes() []domain.PendingChange {
	out := make([]domain.PendingChange, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.changes[id])
	}
	return out
}

// Len - количество различных ID в буфере
func (b *Buffer) Len() int {
	return len(b.order)
}

// HasUnsavedChanges возвращает true, если буфер не пуст
func (b *Buffer) HasUnsavedChanges() bool {
	return len(b.order) > 0
}

// IsLocal сообщает, что ID был введён staged-созданием и ещё не существует в хранилище
func (b *Buffer) IsLocal(id int64) bool {
	_, ok := b.local[id]
	return ok
}

// Clear удаляет все изменения
func (b *Buffer) Clear() {
	b.order = nil
	b.changes = make(map[int64]domain.PendingChange)
	b.local = make(map[int64]struct{})
	b.stored = make(map[int64]int64)
	b.deleted = make(map[int64]struct{})
}

// Clone возвращает независимую копию буфера
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer()
	c.order = append([]int64(nil), b.order...)
	for id, ch := range b.changes {
		ch.Data = ch.Data.Clone()
		c.changes[id] = ch
	}
	for id := range b.local {
		c.local[id] = struct{}{}
	}
	for id, storeID := range b.stored {
		c.stored[id] = storeID
	}
	for id := range b.deleted {
		c.deleted[id] = struct{}{}
	}
	return c
}

// MarkApplied запоминает шаги, которые уже дошли до хранилища при неудачном сохранении
func (b *Buffer) MarkApplied(applied []AppliedChange) {
	for _, a := range applied {
		switch a.Action {
		case ActionCreate:
			if a.Location != nil {
				b.stored[a.StagedID] = a.Location.ID
			}
		case ActionDelete:
			b.deleted[a.StagedID] = struct{}{}
		}
	}
}

// StoredID возвращает ID в хранилище для локально созданной точки, которая уже сохранена
func (b *Buffer) StoredID(id int64) (int64, bool) {
	storeID, ok := b.stored[id]
	return storeID, ok
}

// DeleteApplied сообщает, что staged-удаление id уже выполнено
func (b *Buffer) DeleteApplied(id int64) bool {
	_, ok := b.deleted[id]
	return ok
}

// Position - позиция id в порядке применения. ID, которого ещё нет в буфере,
// получит позицию Len().
func (b *Buffer) Position(id int64) int {
	for i, staged := range b.order {
		if staged == id {
			return i
		}
	}
	return len(b.order)
}

// stagedID переводит ID хранилища в ключ буфера (для уже сохранённых локальных созданий)
func (b *Buffer) stagedID(storeID int64) int64 {
	if _, ok := b.changes[storeID]; ok {
		return storeID
	}
	for id, s := range b.stored {
		if s == storeID {
			return id
		}
	}
	return storeID
}

// CodeConflicts возвращает staged create/update с данным кодом, кроме excludeID
func (b *Buffer) CodeConflicts(code int, excludeID int64) []domain.PendingChange {
	var out []domain.PendingChange
	for _, id := range b.order {
		if id == excludeID {
			continue
		}
		ch := b.changes[id]
		if ch.Type == domain.ChangeDelete || ch.Data == nil {
			continue
		}
		if ch.Data.Code == code {
			out = append(out, ch)
		}
	}
	return out
}

// Releases сообщает, что сохранённая точка storeID освободит код code раньше, чем будет
// применено изменение taker: её удаление или смена кода стоит в буфере перед ним.
func (b *Buffer) Releases(storeID int64, code int, taker int64) bool {
	id := b.stagedID(storeID)
	ch, ok := b.changes[id]
	if !ok {
		return false
	}
	if b.Position(id) >= b.Position(taker) {
		return false
	}
	if ch.Type == domain.ChangeDelete {
		return true
	}
	return ch.Data != nil && ch.Data.Code != code
}
