package runtime

import (
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
)

// Runtime is the readiness snapshot the health endpoints consult.
type Runtime struct {
	CatalogLoaded bool
	LLMClient     llm.Client
}
