package core

// Intent is the router's classification of an utterance into a capability
// plus extracted parameters. Multi-intent utterances produce one Intent per
// capability, ordered by appearance in the utterance (declaration order, not
// confidence). Confidence acts only as a threshold gate.
type Intent struct {
	Capability Capability     `json:"capability"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters,omitempty"`

	// Condition carries a deferred guard clause ("if match > 80%") extracted
	// from the utterance. It is bound to a Task guard during decomposition
	// and evaluated strictly at execution time.
	Condition *Condition `json:"condition,omitempty"`

	// Clarification holds the clarifying question when Capability is the
	// clarification sentinel.
	Clarification string `json:"clarification,omitempty"`
}

// Condition describes a predicate over a prior capability's output, extracted
// by the router and deferred until execution time.
type Condition struct {
	// Source names the capability whose output the predicate inspects.
	Source Capability `json:"source"`
	// Field is the output field name, e.g. "score".
	Field string `json:"field"`
	// Op is one of ">", ">=", "<", "<=", "==", "!=".
	Op string `json:"op"`
	// Value is the comparison operand.
	Value float64 `json:"value"`
}

// NewClarificationIntent builds the sentinel intent carrying a clarifying
// question back to the user.
func NewClarificationIntent(question string) Intent {
	return Intent{
		Capability:    CapabilityClarification,
		Confidence:    1.0,
		Clarification: question,
	}
}

// IsClarification reports whether this is the clarification sentinel.
func (i Intent) IsClarification() bool {
	return i.Capability == CapabilityClarification
}
