package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jtan124/jarvis-llm-agent/internal/config"
	"github.com/jtan124/jarvis-llm-agent/internal/health"
	"github.com/jtan124/jarvis-llm-agent/internal/logx"
	"github.com/jtan124/jarvis-llm-agent/internal/metrics"
	"github.com/jtan124/jarvis-llm-agent/internal/runtime"
)

type HTTPServer struct {
	srv *http.Server
}

// portOverride, when set, wins over the PORT env var. Used by the -port flag.
var portOverride = ""

// SetHTTPPort allows overriding the configured HTTP port before starting the app.
func SetHTTPPort(p string) {
	portOverride = p
}

func NewHTTPServer(cfg *config.EnvVars, api *API, rt *runtime.Runtime) *HTTPServer {
	mux := http.NewServeMux()

	api.RegisterHTTP(mux)
	mux.HandleFunc("/health/live", health.LiveHandler)
	mux.HandleFunc("/health/ready", health.ReadyHandler(rt))
	mux.HandleFunc("/metrics", metrics.ServeHTTP)

	port := strconv.Itoa(cfg.Port)
	if portOverride != "" {
		port = portOverride
	}

	// Wrap with metrics, then security middleware
	hardened := secureMiddleware(metricsMiddleware(mux))

	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           hardened,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
		},
	}
}

// Handler exposes the wrapped handler so e2e tests can drive the server
// without binding a port.
func (h *HTTPServer) Handler() http.Handler {
	return h.srv.Handler
}

func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logx.Info("HTTP", "listening on %s", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logx.Info("HTTP", "shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutCtx)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		lbls := map[string]string{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(sr.status),
		}
		metrics.HTTPRequests.Inc(lbls)
		metrics.HTTPDuration.Observe(lbls, time.Since(start).Seconds())
	})
}

// secureMiddleware adds basic hardening to HTTP server:
// - Common security headers
// - Body size limit
// - Block TRACE method
func secureMiddleware(next http.Handler) http.Handler {
	// classification requests carry full conversation context packages
	const maxBody = 10 << 20 // 10MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Block TRACE to avoid request smuggling tricks
		if r.Method == http.MethodTrace {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Limit body size early
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "0")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}
