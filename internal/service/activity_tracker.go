package service

import (
	"sync"
	"time"

	"github.com/goatkit/goatchat/internal/models"
)

// ActivityTracker owns the per-session conversation state: last-activity
// timestamp, closure phase and the awaiting-assistance flag. All three live
// in one record per session, and every read-modify-write runs under that
// session's lock, so a silence check can never race an activity reset for
// the same session. Operations on different sessions proceed in parallel.
type ActivityTracker struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession

	now func() time.Time
}

type trackedSession struct {
	mu    sync.Mutex
	state models.ConversationState
}

// NewActivityTracker creates an empty tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		sessions: make(map[string]*trackedSession),
		now:      time.Now,
	}
}

// session returns the entry for a session, creating it lazily. An unknown
// session is never an error.
func (t *ActivityTracker) session(sessionID string) *trackedSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.sessions[sessionID]
	if !ok {
		entry = &trackedSession{
			state: models.ConversationState{
				SessionID:      sessionID,
				LastActivityAt: t.now(),
				ClosurePhase:   models.PhaseNone,
			},
		}
		t.sessions[sessionID] = entry
	}
	return entry
}

// WithSession runs fn with exclusive access to the session's state, creating
// the session if it has never been seen. fn may mutate the state in place.
func (t *ActivityTracker) WithSession(sessionID string, fn func(state *models.ConversationState)) {
	entry := t.session(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.state)
}

// ResetActivity records the current time as the session's last activity and
// resets the closure phase. Idempotent; creates the session if absent.
func (t *ActivityTracker) ResetActivity(sessionID string) {
	now := t.now()
	t.WithSession(sessionID, func(state *models.ConversationState) {
		state.LastActivityAt = now
		state.ClosurePhase = models.PhaseNone
		state.AwaitingAssistanceReply = false
	})
}

// ElapsedSilence returns the time since the session's last activity. The
// second return is false if the session has never been seen.
func (t *ActivityTracker) ElapsedSilence(sessionID string) (time.Duration, bool) {
	t.mu.Lock()
	entry, ok := t.sessions[sessionID]
	t.mu.Unlock()
	if !ok {
		return 0, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return t.now().Sub(entry.state.LastActivityAt), true
}

// Snapshot returns a copy of the session's state. The second return is false
// if the session has never been seen.
func (t *ActivityTracker) Snapshot(sessionID string) (models.ConversationState, bool) {
	t.mu.Lock()
	entry, ok := t.sessions[sessionID]
	t.mu.Unlock()
	if !ok {
		return models.ConversationState{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, true
}

// EvictIdle drops sessions whose last activity is older than ttl and returns
// how many were removed. Closure state is ephemeral; evicted sessions start
// fresh on their next activity.
func (t *ActivityTracker) EvictIdle(ttl time.Duration) int {
	cutoff := t.now().Add(-ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for id, entry := range t.sessions {
		entry.mu.Lock()
		idle := entry.state.LastActivityAt.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(t.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked sessions.
func (t *ActivityTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
