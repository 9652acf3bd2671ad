package intent

import (
	"context"

	"github.com/jtan124/jarvis-llm-agent/internal/jsonx"
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
	"github.com/jtan124/jarvis-llm-agent/internal/logx"
	"github.com/jtan124/jarvis-llm-agent/internal/metrics"
)

// Classifier orchestrates prompt building, the provider call and response
// validation. Classify never fails: every error path degrades to a
// well-typed {targeted:false} result, so the bot front end has exactly one
// shape to handle whether the model declined the message or fell over.
type Classifier struct {
	llm    llm.Client
	prompt *PromptBuilder
}

func NewClassifier(client llm.Client, prompt *PromptBuilder) *Classifier {
	return &Classifier{llm: client, prompt: prompt}
}

func (c *Classifier) Classify(ctx context.Context, req ClassificationRequest) Result {
	prompt := c.prompt.Build(req)

	raw, err := c.llm.Chat(ctx, prompt)
	if err != nil {
		logx.Warn("Classifier", "provider call failed: %v", err)
		metrics.ClassifyResults.Inc(map[string]string{"outcome": "degraded"})
		return NotTargeted("Error: " + err.Error())
	}

	parsed, ok := jsonx.Extract(raw)
	if !ok {
		logx.Warn("Classifier", "failed to parse response: %.200s", raw)
		metrics.ClassifyResults.Inc(map[string]string{"outcome": "degraded"})
		return NotTargeted("Failed to parse LLM response")
	}

	res, err := resultFromValue(parsed)
	if err != nil {
		logx.Warn("Classifier", "schema validation failed: %v", err)
		metrics.ClassifyResults.Inc(map[string]string{"outcome": "degraded"})
		return NotTargeted(err.Error())
	}

	if res.Targeted {
		metrics.ClassifyResults.Inc(map[string]string{"outcome": "targeted"})
		logx.Info("Classifier", "classification complete: %d intent(s)", len(res.Intents))
	} else {
		metrics.ClassifyResults.Inc(map[string]string{"outcome": "not_targeted"})
		logx.Debug("Classifier", "message not targeted: %s", res.Reason)
	}
	return res
}
