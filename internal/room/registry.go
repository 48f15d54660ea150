// internal/room/registry.go
package room

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/drawdash/drawdash/internal/models"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Registry manages active rooms in memory. It provides thread-safe access to
// create, retrieve, and delete rooms, plus the periodic sweep of old empty
// rooms.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry initializes and returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create builds a room under a fresh short code, regenerating on collision,
// and registers it.
func (r *Registry) Create(settings models.RoomSettings) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for {
		id = generateCode()
		if _, exists := r.rooms[id]; !exists {
			break
		}
	}
	rm := newRoom(id, settings)
	r.rooms[id] = rm
	log.Printf("Registry: created room %s.", id)
	return rm
}

// Get retrieves a room by its code.
func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	return rm, ok
}

// Delete removes a room from the registry.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[id]; exists {
		delete(r.rooms, id)
		log.Printf("Registry: deleted room %s.", id)
	}
}

// List returns a snapshot of all active rooms.
func (r *Registry) List() []*Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm)
	}
	return out
}

// Sweep deletes rooms older than maxAge for which isEmpty reports no live
// members, returning the removed ids. Callers run it periodically.
func (r *Registry) Sweep(maxAge time.Duration, isEmpty func(id string) bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed []string
	for id, rm := range r.rooms {
		if now.Sub(rm.CreatedAt) > maxAge && isEmpty(id) {
			delete(r.rooms, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		log.Printf("Registry: swept %d inactive room(s): %s", len(removed), strings.Join(removed, ", "))
	}
	return removed
}

func generateCode() string {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}
