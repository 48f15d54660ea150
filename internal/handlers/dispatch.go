// internal/handlers/dispatch.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/drawdash/drawdash/internal/game"
	"github.com/drawdash/drawdash/internal/models"
)

// inbound is the flat client message envelope. Fields beyond Type are
// populated per action; absent ones stay zero.
type inbound struct {
	Type      string               `json:"type"`
	RoomID    string               `json:"roomId"`
	UserName  string               `json:"userName"`
	Avatar    string               `json:"avatar"`
	WordIndex *int                 `json:"wordIndex"`
	Guess     string               `json:"guess"`
	Word      string               `json:"word"`
	Settings  *models.RoomSettings `json:"settings"`
	Data      json.RawMessage      `json:"data"`
}

// handleMessage interprets one inbound client event. A panic in any single
// handler is contained so one bad message cannot take down the connection.
func (s *Server) handleMessage(gc *GameConnection, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Errorf("Conn %s: panic handling message: %v", gc.ID, r)
			gc.Send(game.NewEvent(game.EventGameError, game.P{"message": "internal error"}))
		}
	}()

	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.Logger.Warnf("Conn %s: invalid json: %v", gc.ID, err)
		gc.Send(game.NewEvent(game.EventGameError, game.P{"message": "invalid JSON"}))
		return
	}

	switch msg.Type {
	case game.ActionCreateRoom:
		s.handleCreateRoom(gc, msg)
	case game.ActionJoinRoom:
		s.handleJoinRoom(gc, msg)
	case game.ActionLeaveRoom:
		s.handleLeaveRoom(gc)
	case game.ActionStartGame:
		if sess, ok := s.sessionFor(gc.ID); ok {
			s.reportGameError(gc, sess.StartGame(gc.ID))
		}
	case game.ActionSelectWord:
		if sess, ok := s.sessionFor(gc.ID); ok && msg.WordIndex != nil {
			s.reportGameError(gc, sess.SelectWord(gc.ID, *msg.WordIndex))
		}
	case game.ActionGuess:
		if sess, ok := s.sessionFor(gc.ID); ok && msg.Guess != "" {
			sess.Guess(gc.ID, msg.Guess)
		}
	case game.ActionCorrectGuess:
		if sess, ok := s.sessionFor(gc.ID); ok && msg.Word != "" {
			sess.RegisterCorrect(gc.ID, msg.Word)
		}
	case game.ActionTimerComplete:
		if sess, ok := s.sessionFor(gc.ID); ok {
			sess.TimerComplete()
		}
	case game.ActionCompleteRound:
		if sess, ok := s.sessionFor(gc.ID); ok {
			s.reportGameError(gc, sess.CompleteRound(gc.ID))
		}
	case game.ActionUpdateSettings:
		s.handleUpdateSettings(gc, msg)
	case game.ActionDraw:
		s.handleDraw(gc, msg)
	case game.ActionClearCanvas:
		s.handleClearCanvas(gc)
	case game.ActionGetRoomUsers:
		if sess, ok := s.sessionFor(gc.ID); ok {
			gc.Send(game.NewEvent(game.EventRoomUsers, sess.RosterPayload()))
		}
	case game.ActionGetUser:
		s.handleGetUser(gc)
	case game.ActionGetDrawerInfo:
		if sess, ok := s.sessionFor(gc.ID); ok {
			gc.Send(game.NewEvent(game.EventDrawerInfo, sess.DrawerInfoPayload(gc.ID)))
		}
	case game.ActionRequestWordOptions:
		s.handleWordOptions(gc)
	case game.ActionRequestSettings:
		if sess, ok := s.sessionFor(gc.ID); ok {
			gc.Send(game.NewEvent(game.EventSettingsUpdated, sess.SettingsPayload()))
		}
	case game.ActionRequestGameState:
		if sess, ok := s.sessionFor(gc.ID); ok {
			gc.Send(game.NewEvent(game.EventGameState, sess.GameStatePayload()))
		}
	case game.ActionRequestCanvas:
		s.handleCanvasState(gc)
	default:
		s.Logger.Warnf("Conn %s: unknown action %q.", gc.ID, msg.Type)
		gc.Send(game.NewEvent(game.EventGameError, game.P{"message": "unknown action: " + msg.Type}))
	}
}

// handleCreateRoom makes a room, its session, and joins the creator as host.
func (s *Server) handleCreateRoom(gc *GameConnection, msg inbound) {
	settings := models.DefaultRoomSettings()
	if msg.Settings != nil {
		settings = settings.Merge(*msg.Settings)
	}
	rm := s.Registry.Create(settings)
	sess := s.newSession(rm)

	gc.Send(game.NewEvent(game.EventRoomCreated, game.P{"roomId": rm.ID}))
	s.completeJoin(gc, sess, msg, true)
}

// handleJoinRoom admits a connection into an existing room, restoring saved
// progress when the user is returning inside their grace window.
func (s *Server) handleJoinRoom(gc *GameConnection, msg inbound) {
	sess, ok := s.Sessions.Get(msg.RoomID)
	if !ok {
		gc.Send(game.NewEvent(game.EventJoinError, game.P{"message": "room not found"}))
		return
	}
	s.completeJoin(gc, sess, msg, false)
}

// completeJoin runs the shared join path: reconnect restoration, roster
// admission, and the joiner's initial state sync.
func (s *Server) completeJoin(gc *GameConnection, sess *game.Session, msg inbound, asHost bool) {
	roomID := sess.Room.ID

	p := &models.Player{
		ConnID:   gc.ID,
		UserID:   gc.UserID,
		UserName: msg.UserName,
		Avatar:   msg.Avatar,
	}
	if p.UserName == "" {
		p.UserName = "anonymous"
	}

	var restoredPoints int
	restored := false
	if prevRoom, ok := s.Supervisor.OnReconnect(gc.UserID); ok {
		if prog, found := s.Directory.RestoreProgress(gc.UserID); found && prevRoom == roomID {
			p.Points = prog.Points
			restoredPoints = prog.Points
			restored = true
			if prog.UserName != "" && msg.UserName == "" {
				p.UserName = prog.UserName
			}
			if prog.IsHost {
				asHost = true
			}
		}
		// The snapshot is single-use; joining a different room forfeits it.
		s.Directory.DiscardProgress(gc.UserID)
	}

	if err := sess.Join(p, asHost); err != nil {
		gc.Send(game.NewEvent(game.EventJoinError, game.P{"message": err.Error()}))
		return
	}
	s.bindRoom(gc.ID, roomID)

	gc.Send(game.NewEvent(game.EventRoomJoined, game.P{
		"roomId":   roomID,
		"userName": p.UserName,
		"isHost":   p.IsHost,
		"settings": sess.SettingsPayload(),
	}))
	if restored {
		gc.Send(game.NewEvent(game.EventProgressRestored, game.P{"points": restoredPoints}))
	}

	// Late joiners replay the canvas so mid-round drawings are visible.
	gc.Send(game.NewEvent(game.EventCanvasState, game.P{
		"actions": sess.Room.Canvas.Snapshot(),
	}))
	gc.Send(game.NewEvent(game.EventGameState, sess.GameStatePayload()))

	s.Logger.Infof("Conn %s (%s) joined room %s (host=%v, restored=%v).", gc.ID, p.UserName, roomID, p.IsHost, restored)
}

// handleLeaveRoom is an explicit departure: no reconnection window is kept.
func (s *Server) handleLeaveRoom(gc *GameConnection) {
	roomID, ok := s.roomFor(gc.ID)
	if !ok {
		return
	}
	if sess, found := s.Sessions.Get(roomID); found {
		sess.Leave(gc.ID)
	}
	s.Supervisor.Cancel(gc.UserID)
	s.Directory.Remove(gc.ID)

	s.mu.Lock()
	delete(s.roomOf, gc.ID)
	s.mu.Unlock()

	s.Logger.Infof("Conn %s left room %s.", gc.ID, roomID)
}

func (s *Server) handleUpdateSettings(gc *GameConnection, msg inbound) {
	sess, ok := s.sessionFor(gc.ID)
	if !ok || msg.Settings == nil {
		return
	}
	if err := sess.UpdateSettings(gc.ID, *msg.Settings); err != nil {
		gc.Send(game.NewEvent(game.EventSettingsError, game.P{"message": err.Error()}))
	}
}

// handleDraw relays a drawing action to the rest of the room and records it
// in the canvas backlog. The payload is opaque to the server.
func (s *Server) handleDraw(gc *GameConnection, msg inbound) {
	sess, ok := s.sessionFor(gc.ID)
	if !ok || len(msg.Data) == 0 {
		return
	}
	if !sess.IsDrawer(gc.ID) {
		return
	}
	sess.Room.Canvas.Append(msg.Data)

	ev := game.NewEvent(game.EventDraw, game.P{"data": msg.Data})
	for _, other := range s.roomConns(sess.Room.ID) {
		if other.ID != gc.ID {
			other.Send(ev)
		}
	}
}

// handleClearCanvas wipes the backlog and tells everyone, drawer only.
func (s *Server) handleClearCanvas(gc *GameConnection) {
	sess, ok := s.sessionFor(gc.ID)
	if !ok || !sess.IsDrawer(gc.ID) {
		return
	}
	sess.Room.Canvas.Clear()
	ev := game.NewEvent(game.EventClearCanvas, nil)
	for _, other := range s.roomConns(sess.Room.ID) {
		other.Send(ev)
	}
}

func (s *Server) handleGetUser(gc *GameConnection) {
	p, ok := s.Directory.Lookup(gc.ID)
	if !ok {
		gc.Send(game.NewEvent(game.EventGameError, game.P{"message": "not in a room"}))
		return
	}
	gc.Send(game.NewEvent(game.EventUserInfo, game.P{
		"userName": p.UserName,
		"avatar":   p.Avatar,
		"points":   p.Points,
		"isHost":   p.IsHost,
		"userId":   p.UserID.String(),
	}))
}

func (s *Server) handleWordOptions(gc *GameConnection) {
	sess, ok := s.sessionFor(gc.ID)
	if !ok {
		return
	}
	payload, err := sess.WordOptionsPayload(gc.ID)
	if err != nil {
		gc.Send(game.NewEvent(game.EventGameError, game.P{"message": err.Error()}))
		return
	}
	gc.Send(game.NewEvent(game.EventWordOptions, payload))
}

func (s *Server) handleCanvasState(gc *GameConnection) {
	sess, ok := s.sessionFor(gc.ID)
	if !ok {
		return
	}
	gc.Send(game.NewEvent(game.EventCanvasState, game.P{
		"actions": sess.Room.Canvas.Snapshot(),
	}))
}

// reportGameError forwards session errors to the offending client. Host and
// drawer gating violations are client bugs, not server faults, so they only
// warrant a warn log.
func (s *Server) reportGameError(gc *GameConnection, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, game.ErrNotHost) || errors.Is(err, game.ErrNotDrawer) {
		s.Logger.Warnf("Conn %s: rejected privileged action: %v", gc.ID, err)
	}
	gc.Send(game.NewEvent(game.EventGameError, game.P{"message": err.Error()}))
}
