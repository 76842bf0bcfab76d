package core

import "context"

// MemoryStore is the conversational memory contract consumed by the
// orchestration pipeline. Implementations must serialize turn appends per
// session (single-writer-per-session) while allowing concurrent reads, and
// must keep cross-session state fully isolated. Short method names align with
// the other *Store interfaces.
type MemoryStore interface {
	// Load returns the current working context for a session, creating the
	// session lazily on first use.
	Load(sessionID string) (WorkingContext, error)

	// Append adds a turn to the session log and returns the refreshed working
	// context. Appends are idempotent per turn ID; duplicates are rejected
	// with *DuplicateTurnError and leave the context unchanged.
	Append(sessionID string, t Turn) (WorkingContext, error)

	// ApplySlots merges slot key/value pairs into the session's working
	// context, creating the session lazily if needed.
	ApplySlots(sessionID string, slots map[string]string) error

	// Summarize produces the compact context used as router/decomposer input,
	// collapsing history beyond the configured budget into a digest while
	// keeping the most recent turns verbatim. Summarization failures degrade
	// to the recent raw turns; they never block appends.
	Summarize(ctx context.Context, sessionID string) (WorkingContext, error)
}
