package model

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// CompleteJSON runs a completion and unmarshals the result into out. Models
// frequently wrap JSON in markdown fences or surround it with prose, so the
// response is cleaned before decoding: fences are stripped and, failing a
// direct parse, the first JSON value in the text is extracted. A parse
// failure yields a *MalformedOutputError carrying the raw text.
func CompleteJSON(ctx context.Context, m Model, req Request, out any) error {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return err
	}

	cleaned := ExtractJSON(resp.Text)
	if cleaned == "" {
		return &MalformedOutputError{Raw: resp.Text, Reason: "no JSON value found"}
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &MalformedOutputError{Raw: resp.Text, Reason: err.Error()}
	}

	return nil
}

// ExtractJSON returns the first JSON object or array embedded in text, or ""
// when none is present. Markdown code fences are removed first.
func ExtractJSON(text string) string {
	text = stripFences(strings.TrimSpace(text))

	if gjson.Valid(text) {
		return text
	}

	// Scan for the first brace or bracket and take the longest valid value
	// starting there. gjson tolerates trailing garbage, so parse and re-use
	// the raw slice it consumed.
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}

	candidate := text[start:]
	parsed := gjson.Parse(candidate)
	if !parsed.Exists() {
		return ""
	}

	raw := strings.TrimSpace(parsed.Raw)
	if !gjson.Valid(raw) {
		return ""
	}

	return raw
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	// Drop the opening fence line (```json or bare ```) and a closing fence.
	lines = lines[1:]
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
