package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/uwu/internal/config"
)

// NewServer creates and configures the HTTP server for the uwu API and UI.
// database may be nil, in which case history routes are disabled.
func NewServer(database *sql.DB, cfg *config.Config, logger zerolog.Logger, version, bind string, port int) *http.Server {
	h := &Handlers{
		db:       database,
		cfg:      cfg,
		renderer: NewRenderer(version, logger),
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandler(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed, wrapped handler.
func NewHandler(h *Handlers, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /{$}", h.HandleIndex)
	mux.HandleFunc("GET /history", h.HandleHistoryPage)
	mux.HandleFunc("GET /history/{id}", h.HandleDetailPage)

	mux.HandleFunc("POST /api/uwuify", h.HandleUwuify)
	mux.HandleFunc("POST /api/uwuify/batch", h.HandleBatch)
	mux.HandleFunc("POST /api/render", h.HandleRender)
	mux.HandleFunc("GET /api/history", h.HandleHistoryList)
	mux.HandleFunc("GET /api/history/{id}", h.HandleHistoryFetch)
	mux.HandleFunc("POST /api/history/purge", h.HandleHistoryPurge)

	mux.HandleFunc("GET /healthz", h.HandleHealth)

	return accessLog(logger, gzhttp.GzipHandler(securityHeaders(mux)))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; form-action 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// accessLog logs one line per request and puts the logger into the request
// context so operations log through it.
func accessLog(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger zerolog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().Str("addr", "http://"+srv.Addr).Msg("uwu server running")

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn().Msg("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
