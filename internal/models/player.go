package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is the live per-connection record for a room member. A player is
// keyed by its transient connection ID; UserID is the stable identity that
// survives reconnects.
type Player struct {
	ConnID   string    `json:"-"`
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Avatar   string    `json:"avatar"`
	Points   int       `json:"points"`
	IsHost   bool      `json:"isHost"`

	LastActiveAt time.Time `json:"-"`
}

// Progress is the state saved under a player's persistent identity while they
// are disconnected, restored verbatim on reconnect within the grace window.
type Progress struct {
	Points     int       `json:"points"`
	UserName   string    `json:"userName"`
	Avatar     string    `json:"avatar"`
	IsHost     bool      `json:"isHost"`
	LastActive time.Time `json:"lastActive"`
}

// RoomUser is the roster/leaderboard entry carried by roomUsers broadcasts.
type RoomUser struct {
	UserName string `json:"userName"`
	Avatar   string `json:"avatar"`
	Points   int    `json:"points"`
	IsHost   bool   `json:"isHost"`
	UserID   string `json:"userId"`
}
