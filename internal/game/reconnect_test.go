// internal/game/reconnect_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/drawdash/internal/models"
	"github.com/drawdash/drawdash/internal/room"
)

func TestReconnectWithinGrace(t *testing.T) {
	dir := room.NewDirectory()
	sup := NewReconnectionSupervisor(dir, 200*time.Millisecond)

	userID := uuid.New()
	p := &models.Player{ConnID: "c1", UserID: userID, UserName: "alice", Points: 350}
	dir.Register(p)

	sup.OnDisconnect("c1", "ROOM01")
	dir.Remove("c1")
	require.True(t, sup.Pending(userID))

	roomID, restored := sup.OnReconnect(userID)
	require.True(t, restored)
	assert.Equal(t, "ROOM01", roomID)
	assert.False(t, sup.Pending(userID))

	prog, ok := dir.RestoreProgress(userID)
	require.True(t, ok)
	assert.Equal(t, 350, prog.Points)
	assert.Equal(t, "alice", prog.UserName)
}

func TestReconnectAfterGraceExpires(t *testing.T) {
	dir := room.NewDirectory()
	sup := NewReconnectionSupervisor(dir, 20*time.Millisecond)

	var mu sync.Mutex
	var expiredUser uuid.UUID
	var expiredRoom string
	sup.OnExpire = func(userID uuid.UUID, roomID string) {
		mu.Lock()
		defer mu.Unlock()
		expiredUser = userID
		expiredRoom = roomID
	}

	userID := uuid.New()
	dir.Register(&models.Player{ConnID: "c1", UserID: userID, UserName: "bob", Points: 120})
	sup.OnDisconnect("c1", "ROOM02")
	dir.Remove("c1")

	require.Eventually(t, func() bool {
		return !sup.Pending(userID)
	}, time.Second, 2*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return expiredUser == userID && expiredRoom == "ROOM02"
	}, time.Second, 2*time.Millisecond)

	_, restored := sup.OnReconnect(userID)
	assert.False(t, restored)

	_, ok := dir.RestoreProgress(userID)
	assert.False(t, ok, "progress should be discarded on expiry")
}

func TestReconnectCancelDiscards(t *testing.T) {
	dir := room.NewDirectory()
	sup := NewReconnectionSupervisor(dir, time.Minute)

	userID := uuid.New()
	dir.Register(&models.Player{ConnID: "c1", UserID: userID, UserName: "carol", Points: 40})
	sup.OnDisconnect("c1", "ROOM03")
	dir.Remove("c1")

	sup.Cancel(userID)
	assert.False(t, sup.Pending(userID))

	_, restored := sup.OnReconnect(userID)
	assert.False(t, restored)
	_, ok := dir.RestoreProgress(userID)
	assert.False(t, ok)
}

func TestRepeatDisconnectReplacesWindow(t *testing.T) {
	dir := room.NewDirectory()
	sup := NewReconnectionSupervisor(dir, time.Minute)

	userID := uuid.New()
	dir.Register(&models.Player{ConnID: "c1", UserID: userID, UserName: "dave", Points: 10})
	sup.OnDisconnect("c1", "ROOM04")

	dir.Register(&models.Player{ConnID: "c2", UserID: userID, UserName: "dave", Points: 25})
	sup.OnDisconnect("c2", "ROOM05")

	roomID, restored := sup.OnReconnect(userID)
	require.True(t, restored)
	assert.Equal(t, "ROOM05", roomID)

	prog, _ := dir.RestoreProgress(userID)
	assert.Equal(t, 25, prog.Points)
}
