// Package jsonx pulls machine-readable JSON out of free-form model output.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fence matches a triple-backtick block, optionally tagged "json".
var fence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// Extract parses a JSON value from text. If the text contains a fenced code
// block, only the fenced content is considered; otherwise the whole text is
// parsed. Malformed or empty input is an expected, recoverable condition:
// the second return is false and no error is ever surfaced.
func Extract(text string) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	raw := text
	if m := fence.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return v, true
}
