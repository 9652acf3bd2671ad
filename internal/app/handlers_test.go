package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jtan124/jarvis-llm-agent/internal/config"
	"github.com/jtan124/jarvis-llm-agent/internal/intent"
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
)

type fakeLLM struct {
	output string
	err    error
	calls  int
}

func (f *fakeLLM) Ping(ctx context.Context) error { return f.err }

func (f *fakeLLM) Chat(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func testAPI(t *testing.T, fake *fakeLLM) *API {
	t.Helper()
	catalog, err := config.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}

	// unconfigured real client only backs the info endpoint flag
	gemini := llm.NewGeminiClient("", "", "gemini-2.0-flash-exp")
	builder := intent.NewPromptBuilder(catalog, "")
	classifier := intent.NewClassifier(fake, builder)
	parser := intent.NewEventParser(fake, "gemini-2.0-flash-exp", "")
	return NewAPI(classifier, parser, gemini)
}

func testMux(t *testing.T, fake *fakeLLM) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	testAPI(t, fake).RegisterHTTP(mux)
	return mux
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestInfo(t *testing.T) {
	mux := testMux(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["ok"] != true || body["service"] != "jarvis-llm-agent" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["gemini_configured"] != false {
		t.Fatalf("expected gemini_configured=false, got %v", body["gemini_configured"])
	}
}

func TestDetectIntent_MissingTextNeverCallsClassifier(t *testing.T) {
	fake := &fakeLLM{output: `{"targeted":false}`}
	mux := testMux(t, fake)

	for _, body := range []string{
		`{}`,
		`{"current_message":{"author":"Ben"}}`,
		`{"current_message":{"text":"   "}}`,
	} {
		rr := postJSON(mux, "/detectIntent", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "current_message.text is required") {
			t.Fatalf("unexpected body: %s", rr.Body.String())
		}
	}

	if fake.calls != 0 {
		t.Fatalf("classifier must not be invoked for invalid requests, got %d calls", fake.calls)
	}
}

func TestDetectIntent_MalformedBody(t *testing.T) {
	mux := testMux(t, &fakeLLM{})

	rr := postJSON(mux, "/detectIntent", `{"current_message":`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["ok"] != false || body["error"] != "Internal server error" {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if body["details"] == nil {
		t.Fatalf("expected details to be present")
	}
}

func TestDetectIntent_ProviderFailureIsStill200(t *testing.T) {
	fake := &fakeLLM{err: errors.New("gemini chat failed: boom")}
	mux := testMux(t, fake)

	rr := postJSON(mux, "/detectIntent", `{"current_message":{"author":"Ben","text":"add dinner tomorrow"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("provider failure must not surface as server error, got %d", rr.Code)
	}

	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["ok"] != true || body["targeted"] != false {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if reason, _ := body["reason"].(string); !strings.Contains(reason, "boom") {
		t.Fatalf("expected error text in reason, got %q", body["reason"])
	}
}

func TestDetectIntent_Success(t *testing.T) {
	fake := &fakeLLM{output: "```json\n" + `{
		"targeted": true,
		"intents": [{"intent":"add","confidence":0.9,"reason":"add dinner","metadata":{"extracted_data":{"event_name":"Dinner"}}}]
	}` + "\n```"}
	mux := testMux(t, fake)

	rr := postJSON(mux, "/detectIntent", `{
		"current_message": {"author":"Ben","text":"dinner tomorrow at 6pm"},
		"metadata": {"current_date":"2025-11-12"}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		OK       bool           `json:"ok"`
		Targeted bool           `json:"targeted"`
		Intents  []intent.Entry `json:"intents"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !body.OK || !body.Targeted || len(body.Intents) != 1 {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if body.Intents[0].Intent != "add" {
		t.Fatalf("unexpected intent: %+v", body.Intents[0])
	}
}

func TestDetectIntent_MethodNotAllowed(t *testing.T) {
	mux := testMux(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/detectIntent", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestParseEvent(t *testing.T) {
	fake := &fakeLLM{output: `{"event_name":"Dinner","iso_datetime":"2025-11-13T18:00:00+08:00","person":"Ben","location":""}`}
	mux := testMux(t, fake)

	rr := postJSON(mux, "/parseEvent", `{"text":"dinner tomorrow at 6pm","author":"Ben"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["ok"] != true || body["provider"] != "gemini" {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}

	data := body["data"].(map[string]any)
	if data["event_name"] != "Dinner" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestParseEvent_TextRequired(t *testing.T) {
	mux := testMux(t, &fakeLLM{})

	rr := postJSON(mux, "/parseEvent", `{"author":"Ben"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "text_required") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestParseEvent_FallbackWithoutProvider(t *testing.T) {
	fake := &fakeLLM{err: llm.ErrNotConfigured}
	mux := testMux(t, fake)

	rr := postJSON(mux, "/parseEvent", `{"text":"lunch with Sarah at Marina Bay"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["provider"] != "fallback" {
		t.Fatalf("expected fallback provider, got %v", body["provider"])
	}
}
