package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wellnesstracker/internal/metrics"
	"wellnesstracker/internal/security"
	"wellnesstracker/internal/templates"
)

// RouterConfig wires the handlers into one http.Handler.
type RouterConfig struct {
	CheckIn *CheckInHandler
	Results *ResultsHandler

	// Metrics is served at /metrics when non-nil.
	Metrics *metrics.Recorder
	Logger  *zap.Logger

	CSRFSecret   string
	CookieSecure bool
}

// NewRouter registers every route behind CSRF protection and request
// logging.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", templates.StaticHandler()))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /health", Health)

	// Check-in
	mux.HandleFunc("GET /submit", cfg.CheckIn.ShowForm)
	mux.HandleFunc("POST /submit", cfg.CheckIn.Submit)

	// Results
	mux.HandleFunc("GET /results", cfg.Results.ShowResults)
	mux.HandleFunc("GET /results/export.xlsx", cfg.Results.ExportWorkbook)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	protect := security.CSRFProtect(cfg.CSRFSecret, cfg.CookieSecure, csrfFailure(cfg.Logger))
	return Logging(cfg.Logger, cfg.Metrics)(protect(mux))
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

func csrfFailure(logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf check failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(security.CSRFFailureReason(r)),
		)
		http.Error(w, "Forbidden - invalid or missing form token, please reload the page", http.StatusForbidden)
	})
}
