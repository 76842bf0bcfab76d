// Package memory provides the conversational memory store backing the
// orchestration pipeline: an append-only per-session turn log, slot storage
// for cross-turn references, and budgeted summarization that keeps recent
// turns verbatim while collapsing older history into a model-generated
// digest. Digests are cached per (session, turn count) so repeated
// summarization of an unchanged log costs nothing.
package memory
