// Package input stages the latest control vector per session for the next
// simulation tick. Writes arrive from network handlers and the AI controller;
// reads happen on the room goroutine at the tick boundary.
package input

import (
	"sync"

	"aeroclash/arena/internal/state"
)

// Gateway holds one staged control vector per tracked session. Last write
// before the tick boundary wins; no history is buffered.
type Gateway struct {
	mu     sync.RWMutex
	staged map[string]state.Controls
}

// NewGateway constructs an empty gateway.
func NewGateway() *Gateway {
	return &Gateway{staged: make(map[string]state.Controls)}
}

// Track registers a session so subsequent control writes are accepted. The
// session starts with an all-neutral vector.
func (g *Gateway) Track(sessionID string) {
	if g == nil || sessionID == "" {
		return
	}
	g.mu.Lock()
	//1.- Only seed the neutral default when the session is new, so a control
	// frame racing the join acknowledgement is not clobbered.
	if _, ok := g.staged[sessionID]; !ok {
		g.staged[sessionID] = state.Controls{}
	}
	g.mu.Unlock()
}

// Forget clears the staged vector when a session leaves.
func (g *Gateway) Forget(sessionID string) {
	if g == nil || sessionID == "" {
		return
	}
	g.mu.Lock()
	delete(g.staged, sessionID)
	g.mu.Unlock()
}

// SetControls replaces the staged vector for the session. Unknown sessions are
// a silent no-op: a disconnect racing a control frame is not an error.
func (g *Gateway) SetControls(sessionID string, controls state.Controls) {
	if g == nil || sessionID == "" {
		return
	}
	sanitized := controls.Sanitize()
	g.mu.Lock()
	if _, ok := g.staged[sessionID]; ok {
		g.staged[sessionID] = sanitized
	}
	g.mu.Unlock()
}

// Controls returns the staged vector for the session, or the neutral default
// when the session has never sent a frame.
func (g *Gateway) Controls(sessionID string) state.Controls {
	if g == nil || sessionID == "" {
		return state.Controls{}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.staged[sessionID]
}
