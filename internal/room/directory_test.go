package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/drawdash/internal/models"
)

func TestRegisterReplacesStaleConnection(t *testing.T) {
	d := NewDirectory()
	userID := uuid.New()

	d.Register(&models.Player{ConnID: "conn-1", UserID: userID, UserName: "ana"})
	d.Register(&models.Player{ConnID: "conn-2", UserID: userID, UserName: "ana"})

	_, ok := d.Lookup("conn-1")
	assert.False(t, ok, "stale connection should be evicted")
	p, ok := d.Lookup("conn-2")
	require.True(t, ok)
	assert.Equal(t, "ana", p.UserName)
}

func TestAddPoints(t *testing.T) {
	d := NewDirectory()
	d.Register(&models.Player{ConnID: "c", UserID: uuid.New()})

	total, ok := d.AddPoints("c", 120)
	require.True(t, ok)
	assert.Equal(t, 120, total)

	total, ok = d.AddPoints("c", 80)
	require.True(t, ok)
	assert.Equal(t, 200, total)

	_, ok = d.AddPoints("ghost", 10)
	assert.False(t, ok)
}

func TestProgressRoundTrip(t *testing.T) {
	d := NewDirectory()
	userID := uuid.New()
	d.Register(&models.Player{ConnID: "c", UserID: userID, UserName: "bo", Avatar: "a3", Points: 310, IsHost: true})

	savedID, ok := d.SaveProgress("c")
	require.True(t, ok)
	assert.Equal(t, userID, savedID)

	prog, ok := d.RestoreProgress(userID)
	require.True(t, ok)
	assert.Equal(t, 310, prog.Points)
	assert.Equal(t, "bo", prog.UserName)
	assert.True(t, prog.IsHost)

	d.DiscardProgress(userID)
	_, ok = d.RestoreProgress(userID)
	assert.False(t, ok)
}
