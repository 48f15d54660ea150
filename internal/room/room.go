// internal/room/room.go
package room

import (
	"time"

	"github.com/drawdash/drawdash/internal/models"
)

// Room is an isolated game session: settings, host pointer, and round
// progress. The Registry owns the collection; field mutation happens only
// under the owning session's lock.
type Room struct {
	ID string

	// HostConnID is the connection currently holding host privileges. When
	// the host disconnects it goes stale and NeedsNewHost is set until the
	// next roster recomputation reassigns it.
	HostConnID   string
	NeedsNewHost bool

	Settings models.RoomSettings

	// CurrentRound is 0 while no game is running, then 1..Settings.Rounds.
	CurrentRound int
	GameStarted  bool

	CreatedAt time.Time

	// Canvas is the drawing backlog replayed to late joiners.
	Canvas *Canvas
}

func newRoom(id string, settings models.RoomSettings) *Room {
	return &Room{
		ID:        id,
		Settings:  settings,
		CreatedAt: time.Now(),
		Canvas:    NewCanvas(),
	}
}
