// internal/handlers/server.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/drawdash/drawdash/internal/config"
	"github.com/drawdash/drawdash/internal/game"
	"github.com/drawdash/drawdash/internal/room"
	"github.com/drawdash/drawdash/internal/words"
)

// GameConnection is one live websocket client. Events are queued on OutChan
// and drained by the connection's write pump; a full queue drops the event
// rather than block the sender.
type GameConnection struct {
	ID      string
	UserID  uuid.UUID
	OutChan chan game.Event
	Cancel  context.CancelFunc
}

// Send enqueues an event without blocking.
func (gc *GameConnection) Send(ev game.Event) {
	select {
	case gc.OutChan <- ev:
	default:
		logrus.Warnf("Conn %s: outbound queue full, dropping %s event.", gc.ID, ev.Type)
	}
}

// Server owns the connection registry and routes inbound events to the
// per-room sessions. Session mutation happens under each session's own lock;
// the server lock only guards the connection maps.
type Server struct {
	mu     sync.Mutex
	conns  map[string]*GameConnection // connID -> connection
	roomOf map[string]string          // connID -> roomID

	Registry   *room.Registry
	Directory  *room.Directory
	Sessions   *game.SessionStore
	Supervisor *game.ReconnectionSupervisor
	Corpus     *words.Corpus
	Timing     game.Timing
	Logger     *logrus.Logger
}

// NewServer wires the full coordinator from configuration.
func NewServer(cfg *config.Config, logger *logrus.Logger) *Server {
	dir := room.NewDirectory()
	s := &Server{
		conns:      make(map[string]*GameConnection),
		roomOf:     make(map[string]string),
		Registry:   room.NewRegistry(),
		Directory:  dir,
		Sessions:   game.NewSessionStore(),
		Supervisor: game.NewReconnectionSupervisor(dir, cfg.Game.ReconnectGraceDuration()),
		Corpus:     words.NewCorpus(cfg.Words, nil),
		Timing: game.Timing{
			Countdown:   cfg.Game.CountdownDuration(),
			WordGrace:   cfg.Game.WordGraceDuration(),
			Leaderboard: cfg.Game.LeaderboardDuration(),
			Settle:      time.Second,
			DrawerDelay: 500 * time.Millisecond,
		},
		Logger: logger,
	}
	s.Supervisor.OnExpire = func(userID uuid.UUID, roomID string) {
		logger.Infof("User %s did not return to room %s, progress dropped.", userID, roomID)
	}
	return s
}

// register adds a live connection to the registry.
func (s *Server) register(gc *GameConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[gc.ID] = gc
}

// unregister forgets a connection and its room binding.
func (s *Server) unregister(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, connID)
	delete(s.roomOf, connID)
}

func (s *Server) conn(connID string) (*GameConnection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gc, ok := s.conns[connID]
	return gc, ok
}

// bindRoom records which room a connection currently occupies.
func (s *Server) bindRoom(connID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomOf[connID] = roomID
}

func (s *Server) roomFor(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.roomOf[connID]
	return id, ok
}

// roomConns snapshots the live connections bound to a room.
func (s *Server) roomConns(roomID string) []*GameConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*GameConnection
	for connID, rid := range s.roomOf {
		if rid != roomID {
			continue
		}
		if gc, ok := s.conns[connID]; ok {
			out = append(out, gc)
		}
	}
	return out
}

// sessionFor resolves the session a connection is bound to.
func (s *Server) sessionFor(connID string) (*game.Session, bool) {
	roomID, ok := s.roomFor(connID)
	if !ok {
		return nil, false
	}
	return s.Sessions.Get(roomID)
}

// newSession creates a session over a registry room and wires its fan-out to
// the connection registry. The closures only take the server lock, never a
// session lock, so they are safe to call from inside session transitions.
func (s *Server) newSession(rm *room.Room) *game.Session {
	sess := game.NewSession(rm, s.Directory, s.Corpus, s.Timing)
	roomID := rm.ID
	sess.BroadcastFn = func(ev game.Event) {
		for _, gc := range s.roomConns(roomID) {
			gc.Send(ev)
		}
	}
	sess.UnicastFn = func(connID string, ev game.Event) {
		if gc, ok := s.conn(connID); ok {
			gc.Send(ev)
		}
	}
	s.Sessions.Add(sess)
	return sess
}

// handleDisconnect runs the full teardown for a dropped connection: the
// reconnection window is opened while the profile is still registered, then
// the roster and registries let go of the connection.
func (s *Server) handleDisconnect(connID string) {
	roomID, inRoom := s.roomFor(connID)
	if inRoom {
		s.Supervisor.OnDisconnect(connID, roomID)
		if sess, ok := s.Sessions.Get(roomID); ok {
			sess.HandleDisconnect(connID)
		}
	}
	s.Directory.Remove(connID)
	s.unregister(connID)
	s.Logger.Infof("Conn %s disconnected (room=%q).", connID, roomID)
}

// SweepRooms deletes rooms that are old and empty, closing their sessions.
func (s *Server) SweepRooms(maxAge time.Duration) {
	removed := s.Registry.Sweep(maxAge, func(roomID string) bool {
		sess, ok := s.Sessions.Get(roomID)
		return !ok || sess.MemberCount() == 0
	})
	for _, roomID := range removed {
		s.Sessions.Delete(roomID)
	}
	if len(removed) > 0 {
		s.Logger.Infof("Swept %d stale room(s).", len(removed))
	}
}
