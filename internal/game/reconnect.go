// internal/game/reconnect.go
package game

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/google/uuid"

	"github.com/drawdash/drawdash/internal/room"
)

// pendingReconnect tracks one disconnected player's grace window.
type pendingReconnect struct {
	roomID         string
	disconnectedAt time.Time
	timer          *time.Timer
}

// ReconnectionSupervisor preserves a departed player's identity and score for
// a grace window. A return inside the window restores them; expiry discards
// the saved progress for good.
type ReconnectionSupervisor struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*pendingReconnect

	directory *room.Directory
	grace     time.Duration

	// OnExpire fires (off-lock) when a player's window lapses without a
	// return, after the saved progress is discarded.
	OnExpire func(userID uuid.UUID, roomID string)
}

// NewReconnectionSupervisor builds a supervisor over the shared directory.
func NewReconnectionSupervisor(dir *room.Directory, grace time.Duration) *ReconnectionSupervisor {
	return &ReconnectionSupervisor{
		pending:   make(map[uuid.UUID]*pendingReconnect),
		directory: dir,
		grace:     grace,
	}
}

// OnDisconnect snapshots the player's progress and arms the grace timer. Must
// run while the connection is still registered in the directory.
func (rs *ReconnectionSupervisor) OnDisconnect(connID, roomID string) {
	p, ok := rs.directory.Lookup(connID)
	if !ok {
		return
	}
	userID := p.UserID
	rs.directory.SaveProgress(connID)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if prev, exists := rs.pending[userID]; exists {
		prev.timer.Stop()
	}

	entry := &pendingReconnect{
		roomID:         roomID,
		disconnectedAt: time.Now(),
	}
	entry.timer = time.AfterFunc(rs.grace, func() {
		rs.expire(userID)
	})
	rs.pending[userID] = entry

	log.Printf("Reconnect window opened for user %s in room %s (%s).", userID, roomID, rs.grace)
}

// OnReconnect resolves a returning user. Inside the window it cancels the
// expiry, restores saved progress, and reports the room to rejoin; outside it
// the user is a stranger and joins fresh.
func (rs *ReconnectionSupervisor) OnReconnect(userID uuid.UUID) (roomID string, restored bool) {
	rs.mu.Lock()
	entry, ok := rs.pending[userID]
	if ok {
		entry.timer.Stop()
		delete(rs.pending, userID)
	}
	rs.mu.Unlock()

	if !ok {
		return "", false
	}

	if _, found := rs.directory.RestoreProgress(userID); !found {
		return "", false
	}
	log.Printf("User %s reconnected within grace, rejoining room %s.", userID, entry.roomID)
	return entry.roomID, true
}

// Cancel drops a pending window without restoring, used when the player
// explicitly left.
func (rs *ReconnectionSupervisor) Cancel(userID uuid.UUID) {
	rs.mu.Lock()
	if entry, ok := rs.pending[userID]; ok {
		entry.timer.Stop()
		delete(rs.pending, userID)
	}
	rs.mu.Unlock()
	rs.directory.DiscardProgress(userID)
}

// Pending reports whether a user currently holds an open window.
func (rs *ReconnectionSupervisor) Pending(userID uuid.UUID) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	_, ok := rs.pending[userID]
	return ok
}

func (rs *ReconnectionSupervisor) expire(userID uuid.UUID) {
	rs.mu.Lock()
	entry, ok := rs.pending[userID]
	if ok {
		delete(rs.pending, userID)
	}
	rs.mu.Unlock()

	if !ok {
		return
	}
	rs.directory.DiscardProgress(userID)
	log.Printf("Reconnect window expired for user %s (room %s).", userID, entry.roomID)

	if rs.OnExpire != nil {
		rs.OnExpire(userID, entry.roomID)
	}
}
