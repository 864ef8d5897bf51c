package changeset

import (
	"testing"

	"github.com/route-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(id int64, code int) *domain.Location {
	return &domain.Location{
		ID:       id,
		Code:     code,
		Location: "Vending",
		Delivery: "Daily",
		Lat:      3.1,
		Lng:      101.6,
		RouteID:  1,
	}
}

func TestBuffer_LastWriteWinsKeepsPosition(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: 10, Type: domain.ChangeUpdate, Data: loc(10, 43)})
	buf.Add(domain.PendingChange{ID: 20, Type: domain.ChangeUpdate, Data: loc(20, 44)})
	buf.Add(domain.PendingChange{ID: 10, Type: domain.ChangeUpdate, Data: loc(10, 99)})

	changes := buf.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, int64(10), changes[0].ID)
	assert.Equal(t, 99, changes[0].Data.Code)
	assert.Equal(t, int64(20), changes[1].ID)
}

func TestBuffer_LenNeverExceedsDistinctIDs(t *testing.T) {
	buf := NewBuffer()
	ids := []int64{1, 2, 1, 3, 2, 1, 3, 3}
	for _, id := range ids {
		buf.Add(domain.PendingChange{ID: id, Type: domain.ChangeDelete})
	}
	assert.Equal(t, 3, buf.Len())
	assert.True(t, buf.HasUnsavedChanges())

	buf.Clear()
	assert.Equal(t, 0, buf.Len())
	assert.False(t, buf.HasUnsavedChanges())
}

func TestBuffer_AddCopiesData(t *testing.T) {
	buf := NewBuffer()
	data := loc(5, 43)
	buf.Add(domain.PendingChange{ID: 5, Type: domain.ChangeUpdate, Data: data})

	data.Code = 1000

	got, ok := buf.Get(5)
	require.True(t, ok)
	assert.Equal(t, 43, got.Data.Code)
}

func TestBuffer_DeleteReplacesCreateButStaysLocal(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: -1, Type: domain.ChangeCreate, Data: loc(-1, 43)})
	buf.Add(domain.PendingChange{ID: -1, Type: domain.ChangeDelete})

	got, ok := buf.Get(-1)
	require.True(t, ok)
	assert.Equal(t, domain.ChangeDelete, got.Type)
	assert.True(t, buf.IsLocal(-1))
	assert.False(t, buf.IsLocal(7))
}

func TestBuffer_CloneIsIndependent(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: 1, Type: domain.ChangeUpdate, Data: loc(1, 43)})

	clone := buf.Clone()
	buf.Add(domain.PendingChange{ID: 2, Type: domain.ChangeDelete})
	buf.Clear()

	assert.Equal(t, 1, clone.Len())
	got, _ := clone.Get(1)
	assert.Equal(t, 43, got.Data.Code)
}

func TestBuffer_CodeConflictsAndReleases(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: -1, Type: domain.ChangeCreate, Data: loc(-1, 43)})
	buf.Add(domain.PendingChange{ID: 7, Type: domain.ChangeUpdate, Data: loc(7, 50)})
	buf.Add(domain.PendingChange{ID: 8, Type: domain.ChangeDelete})

	conflicts := buf.CodeConflicts(43, -2)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(-1), conflicts[0].ID)

	assert.Empty(t, buf.CodeConflicts(43, -1))

	// -2 ещё не в буфере и встанет последним
	assert.True(t, buf.Releases(7, 43, -2))
	assert.False(t, buf.Releases(7, 50, -2))
	assert.True(t, buf.Releases(8, 12, -2))
	assert.False(t, buf.Releases(9, 12, -2))
}

func TestBuffer_ReleasesFollowsOrder(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: 2, Type: domain.ChangeUpdate, Data: loc(2, 20)})
	buf.Add(domain.PendingChange{ID: 1, Type: domain.ChangeUpdate, Data: loc(1, 30)})
	buf.Add(domain.PendingChange{ID: 3, Type: domain.ChangeDelete})

	// 1 меняет код после 2, поэтому 2 не может забрать его старый код
	assert.False(t, buf.Releases(1, 10, 2))
	assert.False(t, buf.Releases(3, 10, 2))
	assert.False(t, buf.Releases(3, 10, 1))

	assert.True(t, buf.Releases(2, 10, 1))
	assert.True(t, buf.Releases(1, 10, -1))
	assert.True(t, buf.Releases(3, 10, -1))
}

func TestBuffer_MarkApplied(t *testing.T) {
	buf := NewBuffer()
	buf.Add(domain.PendingChange{ID: -1, Type: domain.ChangeCreate, Data: loc(-1, 43)})
	buf.Add(domain.PendingChange{ID: 8, Type: domain.ChangeDelete})
	buf.Add(domain.PendingChange{ID: 9, Type: domain.ChangeUpdate, Data: loc(9, 10)})

	buf.MarkApplied([]AppliedChange{
		{StagedID: -1, Action: ActionCreate, Location: loc(100, 43)},
		{StagedID: 8, Action: ActionDelete},
	})

	storeID, ok := buf.StoredID(-1)
	require.True(t, ok)
	assert.Equal(t, int64(100), storeID)
	assert.True(t, buf.DeleteApplied(8))
	assert.False(t, buf.DeleteApplied(9))

	// сохранённая точка 100 - это -1 в буфере, её позиция раньше 9
	assert.True(t, buf.Releases(100, 10, 9))
	assert.Equal(t, 0, buf.Position(-1))

	clone := buf.Clone()
	buf.Clear()
	_, ok = buf.StoredID(-1)
	assert.False(t, ok)
	_, ok = clone.StoredID(-1)
	assert.True(t, ok)

	// новая постановка удаления снова требует его выполнить
	clone.Add(domain.PendingChange{ID: 8, Type: domain.ChangeDelete})
	assert.False(t, clone.DeleteApplied(8))
}
