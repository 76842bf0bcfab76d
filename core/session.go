package core

import (
	"sync"
	"time"
)

// Role identifies the author of a Turn.
type Role string

const (
	// RoleUser marks turns authored by the human user.
	RoleUser Role = "user"
	// RoleSystem marks turns injected by the system (prompts, notices).
	RoleSystem Role = "system"
	// RoleAgent marks turns produced by the orchestration pipeline.
	RoleAgent Role = "agent"
)

// Turn is a single entry in a session's conversation log. Once appended it is
// immutable; retries must reuse the same ID so duplicates can be rejected.
type Turn struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Role      Role           `json:"role"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewTurn creates a turn with a fresh ID and a UTC timestamp.
func NewTurn(sessionID string, role Role, text string) Turn {
	return Turn{
		ID:        NewID(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// WorkingContext is the compact, possibly summarized representation of session
// history supplied to the router and decomposer as model input. Slots carry
// cross-turn references such as current_job_id and current_candidate_id.
type WorkingContext struct {
	Summary string            `json:"summary,omitempty"`
	Slots   map[string]string `json:"slots,omitempty"`
	Recent  []Turn            `json:"recent,omitempty"`
}

// SlotCurrentJobID and friends are the well-known working-context slot keys
// written back after plan execution.
const (
	SlotCurrentJobID       = "current_job_id"
	SlotCurrentCandidateID = "current_candidate_id"
	SlotCurrentInterviewID = "current_interview_id"
)

// Slot returns the value for a slot key and whether it is set.
func (w WorkingContext) Slot(key string) (string, bool) {
	v, ok := w.Slots[key]
	return v, ok
}

// Clone returns a deep copy safe for independent mutation.
func (w WorkingContext) Clone() WorkingContext {
	c := WorkingContext{Summary: w.Summary}
	if w.Slots != nil {
		c.Slots = make(map[string]string, len(w.Slots))
		for k, v := range w.Slots {
			c.Slots[k] = v
		}
	}
	if w.Recent != nil {
		c.Recent = make([]Turn, len(w.Recent))
		copy(c.Recent, w.Recent)
	}
	return c
}

// Session is a conversational container tracking an ordered turn log plus the
// derived working context. It is safe for concurrent access.
//
// Contract:
//   - AppendTurn rejects duplicate turn IDs with *DuplicateTurnError and
//     leaves the log and context unchanged
//   - Turns returns a defensive copy to avoid external mutation
//   - The session exclusively owns its turns and working context; lifetime is
//     the session lifetime and retention is owned by the caller.
type Session struct {
	ID      string
	Created time.Time
	Updated time.Time

	mu      sync.RWMutex
	turns   []Turn
	turnIDs map[string]struct{}
	context WorkingContext
}

// NewSession creates a new empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:      id,
		Created: now,
		Updated: now,
		turnIDs: make(map[string]struct{}),
		context: WorkingContext{Slots: map[string]string{}},
	}
}

// AppendTurn adds a turn to the log. Appends are idempotent per turn ID:
// a duplicate is rejected with *DuplicateTurnError and mutates nothing.
func (s *Session) AppendTurn(t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.turnIDs[t.ID]; exists {
		return &DuplicateTurnError{SessionID: s.ID, TurnID: t.ID}
	}
	s.turns = append(s.turns, t)
	s.turnIDs[t.ID] = struct{}{}
	s.Updated = time.Now().UTC()
	return nil
}

// Turns returns a defensive copy of the full turn log in append order.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Len returns the number of turns appended so far.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Context returns a deep copy of the current working context.
func (s *Session) Context() WorkingContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context.Clone()
}

// SetContext replaces the derived working context.
func (s *Session) SetContext(wc WorkingContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = wc.Clone()
	s.Updated = time.Now().UTC()
}

// ApplySlots merges slot key/value pairs into the working context.
func (s *Session) ApplySlots(slots map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.context.Slots == nil {
		s.context.Slots = make(map[string]string, len(slots))
	}
	for k, v := range slots {
		s.context.Slots[k] = v
	}
	s.Updated = time.Now().UTC()
}
