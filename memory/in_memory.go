package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/logging"
	"github.com/hupe1980/hireflow/model"
)

// Options configure an InMemoryStore.
type Options struct {
	// RecentWindow is the number of most-recent turns kept verbatim in the
	// summarized working context.
	RecentWindow int

	// DigestThreshold is the log length beyond which older turns are
	// collapsed into a digest.
	DigestThreshold int

	// DigestCacheSize bounds the digest LRU cache.
	DigestCacheSize int

	// Model produces digests of older history. When nil, summarization
	// degrades to the recent window only.
	Model model.Model

	Logger logging.Logger
}

// InMemoryStore is a process-local core.MemoryStore. Sessions are created
// lazily; each session serializes its own writes while the store-level map is
// guarded separately, so appends to different sessions never contend.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	opts     Options
	digests  *lru.Cache[string, string]
}

// NewInMemoryStore creates a new in-memory memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		RecentWindow:    6,
		DigestThreshold: 12,
		DigestCacheSize: 128,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cache, _ := lru.New[string, string](opts.DigestCacheSize)

	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		opts:     opts,
		digests:  cache,
	}
}

// session returns the session for id, creating it on first use.
func (s *InMemoryStore) session(id string) *core.Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = core.NewSession(id)
	s.sessions[id] = sess
	return sess
}

// Load implements core.MemoryStore.
func (s *InMemoryStore) Load(sessionID string) (core.WorkingContext, error) {
	return s.session(sessionID).Context(), nil
}

// Append implements core.MemoryStore. Duplicate turn IDs are rejected with
// *core.DuplicateTurnError and leave the session unchanged.
func (s *InMemoryStore) Append(sessionID string, t core.Turn) (core.WorkingContext, error) {
	sess := s.session(sessionID)
	if err := sess.AppendTurn(t); err != nil {
		return core.WorkingContext{}, err
	}

	wc := sess.Context()
	wc.Recent = recentTurns(sess, s.opts.RecentWindow)
	sess.SetContext(wc)

	return sess.Context(), nil
}

// ApplySlots implements core.MemoryStore.
func (s *InMemoryStore) ApplySlots(sessionID string, slots map[string]string) error {
	s.session(sessionID).ApplySlots(slots)
	return nil
}

// Summarize implements core.MemoryStore. History beyond the digest threshold
// is collapsed into a model-generated summary; the most recent turns stay
// verbatim. A digest failure falls back to the recent turns alone so routing
// is never blocked by the summarizer.
func (s *InMemoryStore) Summarize(ctx context.Context, sessionID string) (core.WorkingContext, error) {
	sess := s.session(sessionID)

	wc := sess.Context()
	wc.Recent = recentTurns(sess, s.opts.RecentWindow)

	total := sess.Len()
	if total <= s.opts.DigestThreshold || s.opts.Model == nil {
		return wc, nil
	}

	older := sess.Turns()[:total-len(wc.Recent)]
	digest, err := s.digest(ctx, sessionID, total, older)
	if err != nil {
		s.opts.Logger.Warn("memory digest failed, using recent turns only",
			"session_id", sessionID, "error", err)
		return wc, nil
	}

	wc.Summary = digest
	sess.SetContext(wc)

	return wc, nil
}

// digest returns the cached summary for (sessionID, turn count) or asks the
// model for a fresh one. The count in the key invalidates stale digests as
// the log grows.
func (s *InMemoryStore) digest(ctx context.Context, sessionID string, total int, older []core.Turn) (string, error) {
	key := fmt.Sprintf("%s:%d", sessionID, total)
	if cached, ok := s.digests.Get(key); ok {
		return cached, nil
	}

	var sb strings.Builder
	for _, t := range older {
		sb.WriteString(string(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}

	resp, err := s.opts.Model.Complete(ctx, model.Request{
		System: "You summarize hiring-assistant conversations. Keep job titles, candidate names, IDs and decisions. Be brief.",
		Prompt: "Summarize this conversation history in at most 5 sentences:\n\n" + sb.String(),
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Text)
	s.digests.Add(key, summary)

	return summary, nil
}

func recentTurns(sess *core.Session, window int) []core.Turn {
	turns := sess.Turns()
	if window <= 0 || len(turns) <= window {
		return turns
	}
	return turns[len(turns)-window:]
}
