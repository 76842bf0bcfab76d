// Package sqlite provides a durable store.Store backed by SQLite via the
// pure-Go modernc.org/sqlite driver. WAL mode is enabled for concurrent
// reads and the schema is applied through versioned migrations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/hireflow/store"
)

// Store wraps an SQLite connection implementing store.Store.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the database at path, enables WAL mode and applies
// pending migrations. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close implements store.Store.
func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Jobs},
		{2, migrationV2Candidates},
		{3, migrationV3Interviews},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Jobs = `
	CREATE TABLE jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		requirements TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)
`

const migrationV2Candidates = `
	CREATE TABLE candidates (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		match_score REAL NOT NULL DEFAULT 0,
		matching_skills TEXT NOT NULL DEFAULT '[]',
		missing_skills TEXT NOT NULL DEFAULT '[]',
		recommendation TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX idx_candidates_job_id ON candidates(job_id)
`

const migrationV3Interviews = `
	CREATE TABLE interviews (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL REFERENCES candidates(id),
		job_id TEXT NOT NULL REFERENCES jobs(id),
		scheduled_at DATETIME NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		meeting_link TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)
`

// PutJob implements store.Store.
func (s *Store) PutJob(ctx context.Context, job store.Job) error {
	reqs, err := json.Marshal(job.Requirements)
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO jobs (id, title, department, location, description, requirements, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, department=excluded.department,
			location=excluded.location, description=excluded.description,
			requirements=excluded.requirements, status=excluded.status
	`, job.ID, job.Title, job.Department, job.Location, job.Description, string(reqs), string(job.Status), formatTime(job.CreatedAt))
	if err != nil {
		return fmt.Errorf("put job: %w", err)
	}

	return nil
}

// Job implements store.Store.
func (s *Store) Job(ctx context.Context, id string) (store.Job, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, department, location, description, requirements, status, created_at
		FROM jobs WHERE id = ?
	`, id)
	return scanJob(row)
}

// Jobs implements store.Store. Results are ordered by creation time, oldest
// first.
func (s *Store) Jobs(ctx context.Context) ([]store.Job, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, department, location, description, requirements, status, created_at
		FROM jobs ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (store.Job, error) {
	var (
		job     store.Job
		reqs    string
		status  string
		created string
	)
	err := row.Scan(&job.ID, &job.Title, &job.Department, &job.Location, &job.Description, &reqs, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Job{}, store.ErrNotFound
	}
	if err != nil {
		return store.Job{}, fmt.Errorf("scan job: %w", err)
	}

	if err := json.Unmarshal([]byte(reqs), &job.Requirements); err != nil {
		return store.Job{}, fmt.Errorf("decode requirements: %w", err)
	}
	job.Status = store.JobStatus(status)
	job.CreatedAt, _ = parseTime(created)

	return job, nil
}

// PutCandidate implements store.Store.
func (s *Store) PutCandidate(ctx context.Context, c store.Candidate) error {
	matching, err := json.Marshal(c.MatchingSkills)
	if err != nil {
		return fmt.Errorf("encode matching skills: %w", err)
	}
	missing, err := json.Marshal(c.MissingSkills)
	if err != nil {
		return fmt.Errorf("encode missing skills: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO candidates (id, job_id, name, email, match_score, matching_skills, missing_skills, recommendation, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			job_id=excluded.job_id, name=excluded.name, email=excluded.email,
			match_score=excluded.match_score, matching_skills=excluded.matching_skills,
			missing_skills=excluded.missing_skills, recommendation=excluded.recommendation,
			status=excluded.status
	`, c.ID, c.JobID, c.Name, c.Email, c.MatchScore, string(matching), string(missing), c.Recommendation, string(c.Status), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}

	return nil
}

// Candidate implements store.Store.
func (s *Store) Candidate(ctx context.Context, id string) (store.Candidate, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, job_id, name, email, match_score, matching_skills, missing_skills, recommendation, status, created_at
		FROM candidates WHERE id = ?
	`, id)
	return scanCandidate(row)
}

// CandidatesByJob implements store.Store. Ordered by descending match score.
func (s *Store) CandidatesByJob(ctx context.Context, jobID string) ([]store.Candidate, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, job_id, name, email, match_score, matching_skills, missing_skills, recommendation, status, created_at
		FROM candidates WHERE job_id = ? ORDER BY match_score DESC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []store.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func scanCandidate(row rowScanner) (store.Candidate, error) {
	var (
		c        store.Candidate
		matching string
		missing  string
		status   string
		created  string
	)
	err := row.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.MatchScore, &matching, &missing, &c.Recommendation, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Candidate{}, store.ErrNotFound
	}
	if err != nil {
		return store.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}

	if err := json.Unmarshal([]byte(matching), &c.MatchingSkills); err != nil {
		return store.Candidate{}, fmt.Errorf("decode matching skills: %w", err)
	}
	if err := json.Unmarshal([]byte(missing), &c.MissingSkills); err != nil {
		return store.Candidate{}, fmt.Errorf("decode missing skills: %w", err)
	}
	c.Status = store.CandidateStatus(status)
	c.CreatedAt, _ = parseTime(created)

	return c, nil
}

// PutInterview implements store.Store.
func (s *Store) PutInterview(ctx context.Context, iv store.Interview) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO interviews (id, candidate_id, job_id, scheduled_at, duration_seconds, type, meeting_link, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			candidate_id=excluded.candidate_id, job_id=excluded.job_id,
			scheduled_at=excluded.scheduled_at, duration_seconds=excluded.duration_seconds,
			type=excluded.type, meeting_link=excluded.meeting_link, status=excluded.status
	`, iv.ID, iv.CandidateID, iv.JobID, formatTime(iv.ScheduledAt), int64(iv.Duration.Seconds()), string(iv.Type), iv.MeetingLink, string(iv.Status), formatTime(iv.CreatedAt))
	if err != nil {
		return fmt.Errorf("put interview: %w", err)
	}

	return nil
}

// Interview implements store.Store.
func (s *Store) Interview(ctx context.Context, id string) (store.Interview, error) {
	var (
		iv      store.Interview
		secs    int64
		ivType  string
		status  string
		schedAt string
		created string
	)
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, candidate_id, job_id, scheduled_at, duration_seconds, type, meeting_link, status, created_at
		FROM interviews WHERE id = ?
	`, id).Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &schedAt, &secs, &ivType, &iv.MeetingLink, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Interview{}, store.ErrNotFound
	}
	if err != nil {
		return store.Interview{}, fmt.Errorf("scan interview: %w", err)
	}

	iv.ScheduledAt, _ = parseTime(schedAt)
	iv.Duration = time.Duration(secs) * time.Second
	iv.Type = store.InterviewType(ivType)
	iv.Status = store.InterviewStatus(status)
	iv.CreatedAt, _ = parseTime(created)

	return iv, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Metrics implements store.Store.
func (s *Store) Metrics(ctx context.Context) (store.Metrics, error) {
	m := store.Metrics{CandidatesByStatus: make(map[store.CandidateStatus]int)}

	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status != 'closed' THEN 1 ELSE 0 END), 0) FROM jobs
	`).Scan(&m.TotalJobs, &m.OpenJobs)
	if err != nil {
		return store.Metrics{}, fmt.Errorf("job metrics: %w", err)
	}

	err = s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(match_score), 0) FROM candidates
	`).Scan(&m.TotalCandidates, &m.AverageMatchScore)
	if err != nil {
		return store.Metrics{}, fmt.Errorf("candidate metrics: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM candidates GROUP BY status`)
	if err != nil {
		return store.Metrics{}, fmt.Errorf("candidate status metrics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return store.Metrics{}, fmt.Errorf("scan status count: %w", err)
		}
		m.CandidatesByStatus[store.CandidateStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return store.Metrics{}, err
	}

	err = s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM interviews WHERE status = 'scheduled'
	`).Scan(&m.InterviewsScheduled)
	if err != nil {
		return store.Metrics{}, fmt.Errorf("interview metrics: %w", err)
	}

	return m, nil
}
