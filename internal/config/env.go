package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type EnvVars struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"dev"`
	Port         int           `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`

	// An empty API key does not fail config load: the Gemini client fails
	// fast per invocation and the classifier degrades to targeted=false.
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-exp"`
	LLMTimeout    time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`

	Timezone string `envconfig:"TIMEZONE" default:"Asia/Singapore"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadEnv() (*EnvVars, error) {
	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, err
	}
	return &v, nil
}
