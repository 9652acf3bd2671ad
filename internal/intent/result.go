package intent

import "errors"

// Result is the normalized classification outcome, a tagged union over two
// cases: targeted=false carries only Reason, targeted=true carries Intents.
type Result struct {
	Targeted bool    `json:"targeted"`
	Reason   string  `json:"reason,omitempty"`
	Intents  []Entry `json:"intents,omitempty"`
}

// Entry is one classified intent. Metadata is passed through from the model
// unchanged; its shape depends on the intent label.
type Entry struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NotTargeted is the safe default every failure path degrades to.
func NotTargeted(reason string) Result {
	return Result{Targeted: false, Reason: reason}
}

// Schema violations. The error text is the reason string the bot front end
// sees, so these are part of the wire contract.
var (
	errNonObject       = errors.New("Failed to parse LLM response")
	errMissingTargeted = errors.New("Invalid response structure")
	errMissingIntents  = errors.New("Invalid response structure - missing intents array")
	errBadIntent       = errors.New("Invalid intent structure")
)

// resultFromValue converts the JSON value extracted from the model output
// into a Result, failing closed: any schema violation rejects the whole
// response, never a partially repaired one. A single entry missing its
// intent label or confidence invalidates the entire intents array.
func resultFromValue(v any) (Result, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Result{}, errNonObject
	}

	rawTargeted, present := obj["targeted"]
	if !present {
		return Result{}, errMissingTargeted
	}
	targeted, ok := rawTargeted.(bool)
	if !ok {
		return Result{}, errMissingTargeted
	}

	if !targeted {
		reason, _ := obj["reason"].(string)
		if reason == "" {
			reason = "Message not for Jarvis"
		}
		return NotTargeted(reason), nil
	}

	rawIntents, ok := obj["intents"].([]any)
	if !ok || len(rawIntents) == 0 {
		return Result{}, errMissingIntents
	}

	entries := make([]Entry, 0, len(rawIntents))
	for _, ri := range rawIntents {
		m, ok := ri.(map[string]any)
		if !ok {
			return Result{}, errBadIntent
		}
		label, _ := m["intent"].(string)
		confidence, hasConfidence := m["confidence"].(float64)
		if label == "" || !hasConfidence {
			return Result{}, errBadIntent
		}
		reason, _ := m["reason"].(string)
		meta, _ := m["metadata"].(map[string]any)
		entries = append(entries, Entry{
			Intent:     label,
			Confidence: confidence,
			Reason:     reason,
			Metadata:   meta,
		})
	}

	return Result{Targeted: true, Intents: entries}, nil
}
