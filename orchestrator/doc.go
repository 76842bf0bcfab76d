// Package orchestrator walks a plan in topological order, dispatching ready
// tasks to their capability executors through the registry. Independent tasks
// run concurrently under a bounded semaphore; failures are contained to the
// failing task and its dependents; guards are evaluated against accumulated
// results immediately before dispatch. The orchestrator performs no I/O
// beyond dispatch and aggregation, so it is fully replayable against a mock
// dispatcher.
package orchestrator
