package intent

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jtan124/jarvis-llm-agent/internal/config"
)

// DefaultTimezone is the civil-time zone assumed when the request carries
// none. All timestamps the model emits stay in this zone's fixed offset;
// there is no silent conversion to UTC.
const DefaultTimezone = "Asia/Singapore"

const defaultChatType = "group"

// PromptBuilder renders a ClassificationRequest into the single instruction
// string sent to the model. It is pure: identical context plus an identical
// anchor date produce byte-identical output. The prompt is the real protocol
// contract of this service; changes here change behavior.
type PromptBuilder struct {
	catalog  *config.Catalog
	timezone string
	now      func() time.Time
}

func NewPromptBuilder(catalog *config.Catalog, timezone string) *PromptBuilder {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return &PromptBuilder{
		catalog:  catalog,
		timezone: timezone,
		now:      time.Now,
	}
}

// WithClock overrides the anchor-date source. Tests pin it for determinism.
func (b *PromptBuilder) WithClock(now func() time.Time) *PromptBuilder {
	b.now = now
	return b
}

type pendingData struct {
	EventName string
	Missing   string
}

type promptData struct {
	Author    string
	Text      string
	Timestamp string

	Messages     string
	Interactions string
	Schedule     string
	Pending      *pendingData

	Categories string

	Timezone    string
	Offset      string
	CurrentDate string
	Tomorrow    string
	ChatType    string
}

// Build renders the classification prompt.
func (b *PromptBuilder) Build(req ClassificationRequest) string {
	tz := req.Metadata.Timezone
	if tz == "" {
		tz = b.timezone
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}

	anchor := b.anchorDate(req.Metadata.CurrentDate, loc)

	chatType := req.Metadata.ChatType
	if chatType == "" {
		chatType = defaultChatType
	}

	data := promptData{
		Author:       req.CurrentMessage.Author,
		Text:         req.CurrentMessage.Text,
		Timestamp:    req.CurrentMessage.Timestamp,
		Messages:     formatMessages(req.ConversationContext.Last3Messages),
		Interactions: formatInteractions(req.JarvisContext.Last3Interactions),
		Schedule:     formatSchedule(req.CurrentSchedule),
		Categories:   formatCategories(b.catalog),
		Timezone:     tz,
		Offset:       anchor.Format("-07:00"),
		CurrentDate:  anchor.Format("2006-01-02"),
		Tomorrow:     anchor.AddDate(0, 0, 1).Format("2006-01-02"),
		ChatType:     chatType,
	}

	if pc := req.JarvisContext.PendingClarification; pc != nil && pc.Active {
		name := pc.PartialEvent.EventName
		if name == "" {
			name = "Unknown"
		}
		data.Pending = &pendingData{
			EventName: name,
			Missing:   strings.Join(pc.MissingFields, ", "),
		}
	}

	var sb strings.Builder
	// template and data are fully under our control
	if err := intentPrompt.Execute(&sb, data); err != nil {
		panic(err)
	}
	return sb.String()
}

// anchorDate resolves "today" for the prompt: the request's current_date when
// parseable, the injected clock otherwise. Noon avoids offset edge cases at
// midnight.
func (b *PromptBuilder) anchorDate(currentDate string, loc *time.Location) time.Time {
	if currentDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", currentDate, loc); err == nil {
			return d.Add(12 * time.Hour)
		}
	}
	n := b.now().In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 12, 0, 0, 0, loc)
}

func formatMessages(messages []ContextMessage) string {
	if len(messages) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(messages))
	for i, msg := range messages {
		speaker := msg.Author
		if msg.IsBot {
			speaker = "Jarvis (BOT)"
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %q", i+1, speaker, msg.Text))
	}
	return strings.Join(lines, "\n")
}

func formatInteractions(interactions []Interaction) string {
	if len(interactions) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(interactions))
	for i, in := range interactions {
		author := in.Author
		if author == "" {
			author = "User"
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %q -> Intent: %s -> Status: %s",
			i+1, author, in.UserMessage, in.Intent, in.WorkflowState))
	}
	return strings.Join(lines, "\n")
}

func formatSchedule(schedule []ScheduleEntry) string {
	if len(schedule) == 0 {
		return "Empty"
	}
	lines := make([]string, 0, len(schedule))
	for i, ev := range schedule {
		lines = append(lines, fmt.Sprintf("%d. %s - %s - %s %s - %s",
			i+1, ev.EventName, ev.Person, ev.Date, ev.Time, ev.Location))
	}
	return strings.Join(lines, "\n")
}

func formatCategories(catalog *config.Catalog) string {
	lines := make([]string, 0, len(catalog.Intents))
	for i, it := range catalog.Intents {
		lines = append(lines, fmt.Sprintf("%d. **%s** - %s", i+1, it.Type, it.Description))
	}
	return strings.Join(lines, "\n")
}

var intentPrompt = template.Must(template.New("intent").Parse(`You are an intent classifier for Jarvis, a scheduling assistant bot in a Telegram group chat.

## YOUR TASK (2 STEPS):

### STEP 1: Is this message for Jarvis?
Determine if the current message is intended for Jarvis or just group chatter.

**Indicators message IS for Jarvis:**
- Explicitly mentions "Jarvis"
- Continues a conversation Jarvis started (responding to clarification)
- Contains scheduling intent keywords (add, change, delete, schedule, meeting, etc.)
- Author previously interacted with Jarvis recently

**Indicators message is NOT for Jarvis:**
- Casual chat between group members
- No scheduling context
- Unrelated to calendar/events

### STEP 2: If for Jarvis, what's the intent(s)?

**Intent Categories:**
{{.Categories}}

**IMPORTANT: Multiple Intents**
If user message contains MULTIPLE distinct actions, return array of intents.
Example: "change surgery to 3pm and add dinner tomorrow" -> [edit, add]

---

## CONTEXT PROVIDED:

**Current Message:**
Author: {{.Author}}
Text: "{{.Text}}"
Timestamp: {{.Timestamp}}

**Last 3 Group Messages:**
{{.Messages}}

**Last 3 Jarvis Interactions:**
{{.Interactions}}

{{if .Pending}}**PENDING CLARIFICATION:**
Event: {{.Pending.EventName}}
Missing: {{.Pending.Missing}}
Status: Waiting for user to provide missing information

{{end}}**Current Schedule:**
{{.Schedule}}

**Metadata:**
- Timezone: {{.Timezone}}
- Current Date: {{.CurrentDate}}
- Chat Type: {{.ChatType}}

---

## CRITICAL RULES:

1. **Clarification Context Priority**:
   - If pending_clarification exists AND Jarvis's last message was asking for info:
     - User's immediate reply is LIKELY for Jarvis (targeted=true)
     - Check if user is providing missing info -> clarify
     - OR if user is changing intent (edit/delete) -> that intent
     - OR if user is asking unrelated question -> off_topic

2. **Implicit Targeting**:
   - If Jarvis just sent a message AND user replies immediately -> targeted=true
   - No need for explicit "Jarvis" mention if context is clear

3. **Multiple Intents**:
   - If message has 2+ distinct scheduling actions -> return array
   - Example: "change X and also add Y" -> [{intent: "edit"}, {intent: "add"}]

4. **Confidence Scoring**:
   - 0.9-1.0: Very clear
   - 0.7-0.89: Reasonably clear
   - 0.4-0.69: Ambiguous (bot will ask to rephrase)
   - 0.0-0.39: Very unclear

5. **Off-Topic Detection**:
   - If pending clarification + user asks unrelated question -> off_topic
   - Bot will ask: "Do you still want to complete it?"

---

## EXTRACTION RULES:

1. Only extract information EXPLICITLY stated in the message. Never infer values that are not present.
2. If no date is mentioned, leave iso_datetime empty. If a date is mentioned without a time, use the date with time 00:00:00 and set has_time=false.
3. Resolve relative date words ("today", "tomorrow", "tonight") against Current Date above. "tonight" means today.
4. Correct obvious typos in location names (e.g. "Solaris Paragn" -> "Solis Paragon").
5. Emit timestamps as civil time with the {{.Offset}} offset, e.g. {{.CurrentDate}}T18:00:00{{.Offset}}. NEVER convert to UTC or any other timezone.

---

## OUTPUT FORMAT (JSON only, no markdown):

{
  "targeted": true|false,
  "intents": [
    {
      "intent": "add|edit|delete|clarify|off_topic|inconclusive",
      "confidence": 0.0-1.0,
      "reason": "Brief explanation",
      "metadata": {
        // Intent-specific data
      }
    }
  ]
}

For "add" intents, metadata.extracted_data is:
{ "event_name": "...", "iso_datetime": "...", "person": "...", "location": "...", "has_time": true|false }

## EXAMPLE OUTPUTS:

**Example 1: Edit during clarification**
Input: "actually change it to 3pm"
Context: Bot asked for location
Output:
{
  "targeted": true,
  "intents": [
    {
      "intent": "edit",
      "confidence": 0.92,
      "reason": "User wants to change time instead of providing location",
      "metadata": {
        "target_event_id": "evt_123",
        "action": "update_time",
        "extracted_data": { "new_time": "3pm" }
      }
    }
  ]
}

**Example 2: Clarification response**
Input: "Solis Paragon"
Context: Bot asked for location
Output:
{
  "targeted": true,
  "intents": [
    {
      "intent": "clarify",
      "confidence": 0.98,
      "reason": "User providing missing location",
      "metadata": {
        "clarification_for": "evt_123",
        "field": "location",
        "value": "Solis Paragon"
      }
    }
  ]
}

**Example 3: Multiple intents**
Input: "change surgery to 3pm and also add dinner tomorrow"
Output:
{
  "targeted": true,
  "intents": [
    {
      "intent": "edit",
      "confidence": 0.90,
      "reason": "First action: change surgery time",
      "metadata": {
        "target_event_name": "Surgery",
        "action": "update_time",
        "extracted_data": { "new_time": "3pm" }
      }
    },
    {
      "intent": "add",
      "confidence": 0.85,
      "reason": "Second action: add new dinner event",
      "metadata": {
        "extracted_data": {
          "event_name": "Dinner",
          "iso_datetime": "{{.Tomorrow}}T00:00:00{{.Offset}}",
          "person": "{{.Author}}",
          "location": "",
          "has_time": false
        }
      }
    }
  ]
}

**Example 4: Off-topic during clarification**
Input: "what's the weather?"
Context: Bot asked for location
Output:
{
  "targeted": true,
  "intents": [
    {
      "intent": "off_topic",
      "confidence": 0.95,
      "reason": "User asking unrelated question during clarification",
      "metadata": {
        "off_topic_message": "what's the weather?"
      }
    }
  ]
}

**Example 5: Not for Jarvis**
Input: "Anyone want coffee?"
Context: Group chat
Output:
{
  "targeted": false,
  "reason": "Casual group conversation, no scheduling intent"
}

Now analyze the provided context and classify the current message. Return ONLY the JSON response, no other text.`))
