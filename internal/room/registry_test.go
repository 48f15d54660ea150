package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/drawdash/internal/models"
)

func TestCreateAssignsUniqueCodes(t *testing.T) {
	r := NewRegistry()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rm := r.Create(models.DefaultRoomSettings())
		require.Len(t, rm.ID, codeLength)
		assert.False(t, seen[rm.ID], "duplicate room code %s", rm.ID)
		seen[rm.ID] = true
	}
}

func TestGetAndDelete(t *testing.T) {
	r := NewRegistry()
	rm := r.Create(models.DefaultRoomSettings())

	got, ok := r.Get(rm.ID)
	require.True(t, ok)
	assert.Same(t, rm, got)

	r.Delete(rm.ID)
	_, ok = r.Get(rm.ID)
	assert.False(t, ok)
}

func TestSweepRemovesOnlyOldEmptyRooms(t *testing.T) {
	r := NewRegistry()
	oldEmpty := r.Create(models.DefaultRoomSettings())
	oldBusy := r.Create(models.DefaultRoomSettings())
	fresh := r.Create(models.DefaultRoomSettings())

	oldEmpty.CreatedAt = time.Now().Add(-25 * time.Hour)
	oldBusy.CreatedAt = time.Now().Add(-25 * time.Hour)

	removed := r.Sweep(24*time.Hour, func(id string) bool {
		return id != oldBusy.ID
	})

	assert.Equal(t, []string{oldEmpty.ID}, removed)
	_, ok := r.Get(oldEmpty.ID)
	assert.False(t, ok)
	_, ok = r.Get(oldBusy.ID)
	assert.True(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestCanvasCapsBacklog(t *testing.T) {
	c := NewCanvas()
	for i := 0; i < maxCanvasActions+50; i++ {
		c.Append([]byte(`{"x":1}`))
	}
	assert.Equal(t, maxCanvasActions, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Snapshot())
}
