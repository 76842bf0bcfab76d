// Package router implements the language-model-backed intent router. It
// classifies a user utterance, given the session's working context, into one
// or more capability intents ordered as they appear in the utterance, or into
// a clarification intent when the request is ambiguous or below the
// confidence threshold. Malformed model output is retried once with a
// stricter prompt; a second failure degrades to clarification instead of
// surfacing an error.
package router
