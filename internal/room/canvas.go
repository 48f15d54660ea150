// internal/room/canvas.go
package room

import (
	"encoding/json"
	"sync"
)

// maxCanvasActions caps the replay backlog; older actions are discarded once
// the cap is reached.
const maxCanvasActions = 1000

// Canvas is the per-room drawing backlog. Draw payloads are relayed opaquely;
// the backlog exists only so late joiners and reconnecting clients can replay
// the current picture.
type Canvas struct {
	mu      sync.Mutex
	actions []json.RawMessage
}

func NewCanvas() *Canvas {
	return &Canvas{}
}

// Append records a draw action, dropping the oldest entries past the cap.
func (c *Canvas) Append(action json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, action)
	if len(c.actions) > maxCanvasActions {
		c.actions = c.actions[len(c.actions)-maxCanvasActions:]
	}
}

// Snapshot returns a copy of the current backlog in order.
func (c *Canvas) Snapshot() []json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]json.RawMessage, len(c.actions))
	copy(out, c.actions)
	return out
}

// Len reports the backlog size.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.actions)
}

// Clear drops the backlog, typically at round boundaries.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = nil
}
