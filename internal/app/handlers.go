package app

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jtan124/jarvis-llm-agent/internal/intent"
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
	"github.com/jtan124/jarvis-llm-agent/internal/logx"
)

const (
	serviceName    = "jarvis-llm-agent"
	serviceVersion = "2.0.0"
)

// API holds the request handlers of the service.
type API struct {
	classifier *intent.Classifier
	parser     *intent.EventParser
	gemini     *llm.GeminiClient
}

func NewAPI(classifier *intent.Classifier, parser *intent.EventParser, gemini *llm.GeminiClient) *API {
	return &API{classifier: classifier, parser: parser, gemini: gemini}
}

func (a *API) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/", a.handleInfo)
	mux.HandleFunc("/detectIntent", a.handleDetectIntent)
	mux.HandleFunc("/parseEvent", a.handleParseEvent)
}

type detectResponse struct {
	OK       bool           `json:"ok"`
	Targeted bool           `json:"targeted"`
	Reason   string         `json:"reason,omitempty"`
	Intents  []intent.Entry `json:"intents,omitempty"`
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET / — liveness/info.
func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"service":           serviceName,
		"version":           serviceVersion,
		"endpoints":         []string{"/detectIntent", "/parseEvent"},
		"gemini_configured": a.gemini.Configured(),
	})
}

// POST /detectIntent — classify a message against its conversation context.
// Only a malformed request reaches the caller as an error; every LLM-side
// failure comes back as HTTP 200 with targeted=false.
func (a *API) handleDetectIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := uuid.NewString()

	var req intent.ClassificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error("HTTP", "detectIntent: bad request body: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.CurrentMessage.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "current_message.text is required",
		})
		return
	}

	logx.L(id, "HTTP", "detectIntent: author=%s pending_clarification=%v",
		req.CurrentMessage.Author,
		req.JarvisContext.PendingClarification != nil && req.JarvisContext.PendingClarification.Active)

	timer := logx.Start(id, "HTTP", "detectIntent")
	res := a.classifier.Classify(r.Context(), req)
	timer.End()

	writeJSON(w, http.StatusOK, detectResponse{
		OK:       true,
		Targeted: res.Targeted,
		Reason:   res.Reason,
		Intents:  res.Intents,
	})
}

type parseEventRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	TZ     string `json:"tz"`
}

type parseEventResponse struct {
	OK bool `json:"ok"`
	intent.ParseOutcome
}

// POST /parseEvent — legacy one-shot event extraction.
func (a *API) handleParseEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req parseEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error("HTTP", "parseEvent: bad request body: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text_required"})
		return
	}
	if req.Author == "" {
		req.Author = "Unknown"
	}

	outcome := a.parser.Parse(r.Context(), req.Text, req.Author, req.TZ)
	writeJSON(w, http.StatusOK, parseEventResponse{OK: true, ParseOutcome: outcome})
}
