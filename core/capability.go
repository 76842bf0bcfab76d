package core

import "fmt"

// Capability identifies one of the fixed, enumerated hiring functions the
// system can perform. The set is closed: unknown tags are rejected by
// ParseCapability and again at registry build time, never at dispatch time.
type Capability string

const (
	// CapabilityJobDescription creates or modifies job descriptions.
	CapabilityJobDescription Capability = "job_description"
	// CapabilityScreening screens and evaluates candidate resumes.
	CapabilityScreening Capability = "screening"
	// CapabilityInterviewScheduling schedules and manages interviews.
	CapabilityInterviewScheduling Capability = "interview_scheduling"
	// CapabilityAnalytics generates hiring metrics and reports.
	CapabilityAnalytics Capability = "analytics"
	// CapabilityClarification is the sentinel intent returned when the router
	// cannot confidently classify an utterance. It is never dispatched to an
	// executor; its payload is a clarifying question for the user.
	CapabilityClarification Capability = "clarification"
)

// Capabilities returns the routable capability set in a stable order.
// CapabilityClarification is excluded since it is a router sentinel, not a
// dispatchable function.
func Capabilities() []Capability {
	return []Capability{
		CapabilityJobDescription,
		CapabilityScreening,
		CapabilityInterviewScheduling,
		CapabilityAnalytics,
	}
}

// ParseCapability converts a string tag into a Capability, rejecting anything
// outside the closed set.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown capability %q", s)
	}
	return c, nil
}

// Valid reports whether the capability is a member of the closed set,
// including the clarification sentinel.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityJobDescription, CapabilityScreening,
		CapabilityInterviewScheduling, CapabilityAnalytics,
		CapabilityClarification:
		return true
	}
	return false
}

// Dispatchable reports whether the capability can be bound to an executor.
func (c Capability) Dispatchable() bool {
	return c.Valid() && c != CapabilityClarification
}

// String implements fmt.Stringer.
func (c Capability) String() string { return string(c) }
