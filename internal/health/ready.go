package health

import (
	"errors"
	"net/http"

	"github.com/jtan124/jarvis-llm-agent/internal/llm"
	"github.com/jtan124/jarvis-llm-agent/internal/runtime"
)

// ReadyHandler reports readiness. An unconfigured provider is a supported
// degraded mode (the classifier falls back to targeted=false), so only a
// reachability failure of a configured provider makes the service not ready.
func ReadyHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if !rt.CatalogLoaded {
			http.Error(w, "intent catalog not loaded", 503)
			return
		}

		if err := rt.LLMClient.Ping(r.Context()); err != nil {
			if errors.Is(err, llm.ErrNotConfigured) {
				w.WriteHeader(200)
				w.Write([]byte(`{"status":"ready","provider":"unconfigured"}`))
				return
			}
			http.Error(w, "llm unreachable", 503)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
