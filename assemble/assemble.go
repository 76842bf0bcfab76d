// Package assemble merges an execution report and session context into the
// structured reply returned to the caller: a human-readable summary with one
// line per successful task and an explicit notice for every failed or skipped
// task, verbatim task outputs keyed by task id, and a deduplicated
// next-action list. Failure visibility is a hard requirement: no task outcome
// is ever silently dropped from the message.
package assemble

import (
	"fmt"
	"strings"

	"github.com/hupe1980/hireflow/core"
)

// maxNextActions caps the suggestion list.
const maxNextActions = 5

// SuggestionTable supplies the static per-capability next-action suggestions,
// typically the capability registry.
type SuggestionTable interface {
	NextActions(c core.Capability) []string
}

// Assembler builds responses from execution reports.
type Assembler struct {
	suggestions SuggestionTable
}

// New creates an Assembler over a static suggestion table.
func New(suggestions SuggestionTable) *Assembler {
	return &Assembler{suggestions: suggestions}
}

// Assemble renders the report into a Response. Data carries each task's raw
// output keyed by task id; NextActions merges executor-suggested follow-ups
// with the static table for every successful capability, deduplicated in
// order and capped.
func (a *Assembler) Assemble(report *core.ExecutionReport, wc core.WorkingContext) *core.Response {
	resp := &core.Response{
		Data: make(map[string]map[string]any),
		Code: codeFor(report.Status),
	}

	var lines []string
	for _, res := range report.Results {
		lines = append(lines, a.line(res))
		if res.Status == core.TaskStatusSuccess && res.Output != nil {
			resp.Data[res.TaskID] = res.Output
		}
	}
	resp.Message = strings.Join(lines, "\n")

	resp.NextActions = a.nextActions(report)

	return resp
}

// Clarify builds the response for a clarification intent: no plan ran, the
// assistant asks a question instead.
func (a *Assembler) Clarify(question string) *core.Response {
	return &core.Response{
		Message:       question,
		Code:          core.CodeClarification,
		Clarification: question,
	}
}

// Failure builds the response for a request-fatal error. The raw error text
// is never exposed; the message and code come from the error taxonomy.
func (a *Assembler) Failure(err error) *core.Response {
	msg, code := core.UserMessage(err)
	return &core.Response{Message: msg, Code: code}
}

func (a *Assembler) line(res core.TaskResult) string {
	switch res.Status {
	case core.TaskStatusSuccess:
		if res.Message != "" {
			return res.Message
		}
		return fmt.Sprintf("%s completed.", label(res.Capability))
	case core.TaskStatusFailed:
		return fmt.Sprintf("%s failed and was not completed.", label(res.Capability))
	default:
		switch res.SkipReason {
		case core.SkipReasonGuardNotSatisfied:
			return fmt.Sprintf("%s was skipped: its condition was not met.", label(res.Capability))
		case core.SkipReasonCancelled:
			return fmt.Sprintf("%s was skipped: the request was cancelled.", label(res.Capability))
		default:
			return fmt.Sprintf("%s was skipped because an earlier step did not complete.", label(res.Capability))
		}
	}
}

func (a *Assembler) nextActions(report *core.ExecutionReport) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(action string) {
		if len(out) >= maxNextActions {
			return
		}
		if _, dup := seen[action]; dup {
			return
		}
		seen[action] = struct{}{}
		out = append(out, action)
	}

	for _, res := range report.Results {
		if res.Status != core.TaskStatusSuccess {
			continue
		}
		for _, action := range a.suggestions.NextActions(res.Capability) {
			add(action)
		}
		for _, action := range res.SuggestedNext {
			add(action)
		}
	}

	return out
}

func codeFor(status core.ReportStatus) string {
	switch status {
	case core.ReportComplete:
		return core.CodeOK
	case core.ReportPartial:
		return core.CodePartial
	default:
		return core.CodeInternal
	}
}

// label turns a capability tag into a human-readable step name.
func label(c core.Capability) string {
	switch c {
	case core.CapabilityJobDescription:
		return "Job description"
	case core.CapabilityScreening:
		return "Resume screening"
	case core.CapabilityInterviewScheduling:
		return "Interview scheduling"
	case core.CapabilityAnalytics:
		return "Hiring analytics"
	default:
		return string(c)
	}
}
