package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter mounts the quiz API, the websocket stream, health and metrics.
func NewRouter(quizzes *QuizHandler, ws *WSHandler, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	quizzes.Register(mux)
	mux.HandleFunc("GET /ws", ws.ServeWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return logRequests(logger, instrument(mux))
}

func logRequests(logger zerolog.Logger, next http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
