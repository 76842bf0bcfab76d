// Package store defines the persistence collaborator for hiring records:
// jobs, candidates and interviews, plus the aggregate metrics query backing
// the analytics capability. The in-memory implementation serves tests and
// ephemeral sessions; the sqlite subpackage provides durable storage.
package store
