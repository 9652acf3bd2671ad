// mock-gemini is an OpenAI-compatible chat-completions stub for local
// development: point GEMINI_BASE_URL at it and the agent classifies every
// scheduling-looking message as a targeted "add" without a real API key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const cannedClassification = "```json\n" + `{
  "targeted": true,
  "intents": [
    {
      "intent": "add",
      "confidence": 0.91,
      "reason": "Mock classification",
      "metadata": {
        "extracted_data": {
          "event_name": "Mock Event",
          "iso_datetime": "%sT18:00:00+08:00",
          "person": "Ben",
          "location": "",
          "has_time": true
        }
      }
    }
  ]
}` + "\n```"

const cannedNotTargeted = `{"targeted": false, "reason": "Casual group conversation, no scheduling intent"}`

func main() {
	port := flag.String("port", "8089", "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "gemini-2.0-flash-exp", "object": "model"},
			},
		})
	})

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		prompt := ""
		if len(body.Messages) > 0 {
			prompt = body.Messages[len(body.Messages)-1].Content
		}

		content := cannedNotTargeted
		for _, kw := range []string{"add", "schedule", "meeting", "dinner", "change", "delete"} {
			if strings.Contains(strings.ToLower(prompt), kw) {
				content = fmt.Sprintf(cannedClassification, time.Now().Format("2006-01-02"))
				break
			}
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("[MOCK GEMINI] listening on :%s", *port)
	log.Fatal(http.ListenAndServe(":"+*port, mux))
}
