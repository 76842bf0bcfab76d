// Package model defines the language-model abstraction used by the router
// and the memory summarizer: a normalized Request/Response pair, a minimal
// Model interface, and helpers for JSON completions, retries, and client-side
// rate limiting. Provider adapters live in the openai and anthropic
// subpackages; MockModel serves tests.
package model
