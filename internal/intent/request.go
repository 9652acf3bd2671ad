package intent

// ClassificationRequest is the context package the bot front end sends with
// each message. Only CurrentMessage.Text is required; everything else
// defaults to empty.
type ClassificationRequest struct {
	CurrentMessage      Message             `json:"current_message"`
	ConversationContext ConversationContext `json:"conversation_context"`
	JarvisContext       JarvisContext       `json:"jarvis_context"`
	CurrentSchedule     []ScheduleEntry     `json:"current_schedule"`
	Metadata            Metadata            `json:"metadata"`
}

type Message struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type ConversationContext struct {
	Last3Messages []ContextMessage `json:"last_3_messages"`
}

type ContextMessage struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	IsBot  bool   `json:"is_bot"`
}

type JarvisContext struct {
	Last3Interactions    []Interaction         `json:"last_3_interactions"`
	PendingClarification *PendingClarification `json:"pending_clarification,omitempty"`
}

// Interaction is one prior exchange between a user and the bot.
type Interaction struct {
	Author        string `json:"author"`
	UserMessage   string `json:"user_message"`
	Intent        string `json:"intent"`
	WorkflowState string `json:"workflow_state"`
}

// PendingClarification is bot-held state: it previously asked the user for
// missing event fields and is waiting for the answer.
type PendingClarification struct {
	Active        bool         `json:"active"`
	PartialEvent  PartialEvent `json:"partial_event"`
	MissingFields []string     `json:"missing_fields"`
}

type PartialEvent struct {
	EventName string `json:"event_name"`
}

type ScheduleEntry struct {
	EventName string `json:"event_name"`
	Person    string `json:"person"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
}

type Metadata struct {
	Timezone    string `json:"timezone"`
	CurrentDate string `json:"current_date"`
	ChatType    string `json:"chat_type"`
}
