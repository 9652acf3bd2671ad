package app

import (
	"context"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jtan124/jarvis-llm-agent/internal/config"
	"github.com/jtan124/jarvis-llm-agent/internal/intent"
	"github.com/jtan124/jarvis-llm-agent/internal/llm"
	"github.com/jtan124/jarvis-llm-agent/internal/logx"
	"github.com/jtan124/jarvis-llm-agent/internal/runtime"
)

type App struct {
	cfg        *config.EnvVars
	catalog    *config.Catalog
	llm        *llm.GeminiClient
	classifier *intent.Classifier
	parser     *intent.EventParser
	http       *HTTPServer
}

func New() (*App, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	client := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	client.Timeout = cfg.LLMTimeout
	if client.Configured() {
		logx.Info("App", "gemini configured (model=%s)", cfg.GeminiModel)
	} else {
		logx.Warn("App", "GEMINI_API_KEY not set - running in fallback mode")
	}

	builder := intent.NewPromptBuilder(catalog, cfg.Timezone)
	classifier := intent.NewClassifier(client, builder)
	parser := intent.NewEventParser(client, cfg.GeminiModel, cfg.Timezone)

	rt := &runtime.Runtime{
		CatalogLoaded: len(catalog.Intents) > 0,
		LLMClient:     client,
	}

	api := NewAPI(classifier, parser, client)
	httpServer := NewHTTPServer(cfg, api, rt)

	return &App{
		cfg:        cfg,
		catalog:    catalog,
		llm:        client,
		classifier: classifier,
		parser:     parser,
		http:       httpServer,
	}, nil
}

// loadCatalog prefers an on-disk definitions/ dir and falls back to the
// embedded defaults.
func loadCatalog() (*config.Catalog, error) {
	if info, err := os.Stat("definitions"); err == nil && info.IsDir() {
		logx.Info("Config", "loading intent definitions from definitions/")
		return config.LoadFromDir("definitions")
	}
	return config.DefaultCatalog()
}

// Handler exposes the full HTTP handler for tests that drive the service
// without binding a port.
func (a *App) Handler() http.Handler {
	return a.http.Handler()
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	logx.Info("App", "%s v%s started", serviceName, serviceVersion)

	return g.Wait()
}
