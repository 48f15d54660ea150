// internal/room/directory.go
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drawdash/drawdash/internal/models"
)

// Directory maps live connections to player profiles and persistent user ids
// to saved progress. A persistent user id has at most one live connection at
// a time; progress is keyed by user id so reconnection resumes the same
// point tally.
type Directory struct {
	mu       sync.Mutex
	players  map[string]*models.Player       // connID -> live profile
	progress map[uuid.UUID]models.Progress   // userID -> saved progress
	liveUser map[uuid.UUID]string            // userID -> current connID
}

func NewDirectory() *Directory {
	return &Directory{
		players:  make(map[string]*models.Player),
		progress: make(map[uuid.UUID]models.Progress),
		liveUser: make(map[uuid.UUID]string),
	}
}

// Register records a live connection's profile, replacing any previous
// connection held by the same user id.
func (d *Directory) Register(p *models.Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p.LastActiveAt = time.Now()
	if old, ok := d.liveUser[p.UserID]; ok && old != p.ConnID {
		delete(d.players, old)
	}
	d.players[p.ConnID] = p
	d.liveUser[p.UserID] = p.ConnID
}

// Lookup returns the live profile for a connection.
func (d *Directory) Lookup(connID string) (*models.Player, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.players[connID]
	return p, ok
}

// Remove drops a connection's profile. The user's saved progress, if any, is
// untouched.
func (d *Directory) Remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.players[connID]; ok {
		if d.liveUser[p.UserID] == connID {
			delete(d.liveUser, p.UserID)
		}
		delete(d.players, connID)
	}
}

// AddPoints adds delta to a connection's points and returns the new total.
func (d *Directory) AddPoints(connID string, delta int) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.players[connID]
	if !ok {
		return 0, false
	}
	p.Points += delta
	p.LastActiveAt = time.Now()
	return p.Points, true
}

// SaveProgress persists a live profile under its persistent user id.
func (d *Directory) SaveProgress(connID string) (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.players[connID]
	if !ok {
		return uuid.Nil, false
	}
	d.progress[p.UserID] = models.Progress{
		Points:     p.Points,
		UserName:   p.UserName,
		Avatar:     p.Avatar,
		IsHost:     p.IsHost,
		LastActive: time.Now(),
	}
	return p.UserID, true
}

// RestoreProgress returns saved progress for a user id without discarding it.
func (d *Directory) RestoreProgress(userID uuid.UUID) (models.Progress, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, ok := d.progress[userID]
	return prog, ok
}

// DiscardProgress deletes saved progress, used when the reconnection grace
// period expires.
func (d *Directory) DiscardProgress(userID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.progress, userID)
}
