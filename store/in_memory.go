package store

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a process-local Store guarded by an RWMutex. Records are
// copied on the way in and out so callers can never alias internal state.
type InMemoryStore struct {
	mu         sync.RWMutex
	jobs       map[string]Job
	candidates map[string]Candidate
	interviews map[string]Interview
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		jobs:       make(map[string]Job),
		candidates: make(map[string]Candidate),
		interviews: make(map[string]Interview),
	}
}

// PutJob implements Store.
func (s *InMemoryStore) PutJob(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Requirements = copyStrings(job.Requirements)
	s.jobs[job.ID] = job
	return nil
}

// Job implements Store.
func (s *InMemoryStore) Job(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	job.Requirements = copyStrings(job.Requirements)
	return job, nil
}

// Jobs implements Store. Results are ordered by creation time, oldest first.
func (s *InMemoryStore) Jobs(_ context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		job.Requirements = copyStrings(job.Requirements)
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PutCandidate implements Store.
func (s *InMemoryStore) PutCandidate(_ context.Context, c Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.MatchingSkills = copyStrings(c.MatchingSkills)
	c.MissingSkills = copyStrings(c.MissingSkills)
	s.candidates[c.ID] = c
	return nil
}

// Candidate implements Store.
func (s *InMemoryStore) Candidate(_ context.Context, id string) (Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	c.MatchingSkills = copyStrings(c.MatchingSkills)
	c.MissingSkills = copyStrings(c.MissingSkills)
	return c, nil
}

// CandidatesByJob implements Store. Results are ordered by descending match
// score so the strongest candidates surface first.
func (s *InMemoryStore) CandidatesByJob(_ context.Context, jobID string) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Candidate, 0)
	for _, c := range s.candidates {
		if c.JobID != jobID {
			continue
		}
		c.MatchingSkills = copyStrings(c.MatchingSkills)
		c.MissingSkills = copyStrings(c.MissingSkills)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	return out, nil
}

// PutInterview implements Store.
func (s *InMemoryStore) PutInterview(_ context.Context, iv Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interviews[iv.ID] = iv
	return nil
}

// Interview implements Store.
func (s *InMemoryStore) Interview(_ context.Context, id string) (Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iv, ok := s.interviews[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return iv, nil
}

// Metrics implements Store.
func (s *InMemoryStore) Metrics(_ context.Context) (Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{
		TotalJobs:          len(s.jobs),
		TotalCandidates:    len(s.candidates),
		CandidatesByStatus: make(map[CandidateStatus]int),
	}

	for _, job := range s.jobs {
		if job.Status != JobStatusClosed {
			m.OpenJobs++
		}
	}

	var scoreSum float64
	for _, c := range s.candidates {
		m.CandidatesByStatus[c.Status]++
		scoreSum += c.MatchScore
	}
	if len(s.candidates) > 0 {
		m.AverageMatchScore = scoreSum / float64(len(s.candidates))
	}

	for _, iv := range s.interviews {
		if iv.Status == InterviewStatusScheduled {
			m.InterviewsScheduled++
		}
	}

	return m, nil
}

// Close implements Store. No-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
