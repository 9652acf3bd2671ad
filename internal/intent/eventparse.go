package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jtan124/jarvis-llm-agent/internal/jsonx"
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
	"github.com/jtan124/jarvis-llm-agent/internal/logx"
)

// ParsedEvent is the flat record the legacy /parseEvent endpoint returns.
type ParsedEvent struct {
	EventName   string `json:"event_name"`
	ISODatetime string `json:"iso_datetime"`
	Person      string `json:"person"`
	Location    string `json:"location"`
}

// ParseOutcome reports which path produced the data: "gemini" for a model
// extraction, "fallback" for the deterministic parser.
type ParseOutcome struct {
	Data     ParsedEvent `json:"data"`
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
}

// EventParser is the predecessor of the classifier: one-shot event
// extraction from a single message, no conversation context. Unlike the
// classifier it keeps a regex fallback, so it always yields a record even
// with no provider at all.
type EventParser struct {
	llm      llm.Client
	model    string
	timezone string
}

func NewEventParser(client llm.Client, model, timezone string) *EventParser {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return &EventParser{llm: client, model: model, timezone: timezone}
}

// Parse extracts an event from one message. tz overrides the configured
// timezone for this request only; empty means the default.
func (p *EventParser) Parse(ctx context.Context, text, author, tz string) ParseOutcome {
	if tz == "" {
		tz = p.timezone
	}

	prompt := fmt.Sprintf(`You are an event parser for a family scheduling assistant.
User message: """%s"""
Author: %s
Assume timezone %s. Emit datetimes as civil time with that zone's offset, never UTC.
Return ONLY JSON matching:
{
  "event_name": "string",
  "iso_datetime": "ISO datetime string with timezone offset",
  "person": "string",
  "location": "string"
}
If missing, leave empty strings.
`, text, author, tz)

	raw, err := p.llm.Chat(ctx, prompt)
	if err != nil {
		logx.Warn("Parser", "provider call failed, using fallback: %v", err)
		return ParseOutcome{Data: naiveParse(text), Provider: "fallback", Model: p.model}
	}

	v, ok := jsonx.Extract(raw)
	obj, isObj := v.(map[string]any)
	if !ok || !isObj {
		logx.Warn("Parser", "unparsable response, using fallback: %.200s", raw)
		return ParseOutcome{Data: naiveParse(text), Provider: "fallback", Model: p.model}
	}

	data := ParsedEvent{
		EventName:   str(obj["event_name"]),
		ISODatetime: str(obj["iso_datetime"]),
		Person:      str(obj["person"]),
		Location:    str(obj["location"]),
	}
	return ParseOutcome{Data: data, Provider: "gemini", Model: p.model}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

var (
	personRe   = regexp.MustCompile(`\bwith\s+([A-Z][a-zA-Z]+)`)
	locationRe = regexp.MustCompile(`(?i)\bat\s+([^,]+?)(?:\s+(?:on|at|for)\b|$)`)
)

// naiveParse is the deterministic fallback: the message itself becomes the
// event name, "with <Name>" the person, "at <place>" the location.
func naiveParse(text string) ParsedEvent {
	name := strings.TrimSpace(text)
	if len(name) > 64 {
		name = name[:64]
	}
	out := ParsedEvent{EventName: name}

	if m := personRe.FindStringSubmatch(text); m != nil {
		out.Person = m[1]
	}
	if m := locationRe.FindStringSubmatch(text); m != nil {
		out.Location = strings.TrimSpace(m[1])
	}
	return out
}
