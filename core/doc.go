// Package core provides the foundational domain types, interfaces and error
// taxonomy used by HireFlow. It defines the core abstractions for:
//
//   - Capabilities (the closed set of hiring functions the system performs)
//   - Sessions (stateful conversational containers with an ordered turn log)
//   - Intents (router classifications of an utterance into capabilities)
//   - Plans and Tasks (ordered, dependency-annotated units of work with
//     deferred guard predicates)
//   - TaskResults and ExecutionReports (execution outcomes in plan order)
//   - Pluggable contracts for conversational memory and capability executors
//
// The package intentionally keeps implementation concerns (persistence,
// routing, orchestration, concrete executors) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
