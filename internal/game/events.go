// internal/game/events.go
package game

import "encoding/json"

// EventType is an enum-like type for session events sent to clients.
type EventType string

// Inbound event types handled by the session layer.
const (
	ActionCreateRoom         = "createRoom"
	ActionJoinRoom           = "joinRoom"
	ActionLeaveRoom          = "leaveRoom"
	ActionStartGame          = "startGame"
	ActionSelectWord         = "selectWord"
	ActionGuess              = "guess"
	ActionCorrectGuess       = "correctGuess"
	ActionTimerComplete      = "timerComplete"
	ActionCompleteRound      = "completeRound"
	ActionUpdateSettings     = "updateRoomSettings"
	ActionDraw               = "draw"
	ActionClearCanvas        = "clearCanvas"
	ActionGetRoomUsers       = "getRoomUsers"
	ActionGetUser            = "getUser"
	ActionGetDrawerInfo      = "getDrawerInfo"
	ActionRequestWordOptions = "requestWordOptions"
	ActionRequestSettings    = "requestRoomSettings"
	ActionRequestGameState   = "requestGameState"
	ActionRequestCanvas      = "requestCanvasState"
)

// Outbound event types.
const (
	EventSid              EventType = "sid"
	EventRoomCreated      EventType = "roomCreated"
	EventRoomJoined       EventType = "roomJoined"
	EventJoinError        EventType = "joinError"
	EventProgressRestored EventType = "progressRestored"
	EventRoomUsers        EventType = "roomUsers"
	EventSettingsUpdated  EventType = "roomSettingsUpdated"
	EventSettingsError    EventType = "settingsError"
	EventGameError        EventType = "gameError"
	EventGameState        EventType = "gameState"
	EventDrawerAssigned   EventType = "drawerAssigned"
	EventAssignedAsDrawer EventType = "assignedAsDrawer"
	EventWordSelected     EventType = "wordSelected"
	EventWordOptions      EventType = "wordOptions"
	EventDrawerInfo       EventType = "drawerInfo"
	EventGuess            EventType = "guess"
	EventGuessedCorrectly EventType = "playerGuessedCorrectly"
	EventDrawerPoints     EventType = "drawerEarnedPoints"
	EventRoundComplete    EventType = "roundComplete"
	EventShowLeaderboard  EventType = "showRoundLeaderboard"
	EventRoundChanged     EventType = "roundChanged"
	EventHostAssigned     EventType = "hostAssigned"
	EventCanvasState      EventType = "canvasState"
	EventDraw             EventType = "draw"
	EventClearCanvas      EventType = "clearCanvas"
	EventUserInfo         EventType = "getUserInfo"
)

// Event is an outbound message. The payload is flattened next to the type tag
// on the wire, so `Event{EventRoomCreated, P{"roomId": id}}` marshals as
// `{"type":"roomCreated","roomId":...}`.
type Event struct {
	Type    EventType
	Payload map[string]interface{}
}

// P is shorthand for an event payload.
type P = map[string]interface{}

// NewEvent builds an event with an optional payload.
func NewEvent(t EventType, payload P) Event {
	return Event{Type: t, Payload: payload}
}

// MarshalJSON flattens the payload fields beside the type tag.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		out[k] = v
	}
	out["type"] = string(e.Type)
	return json.Marshal(out)
}
