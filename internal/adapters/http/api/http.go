// Package api exposes the bridge's operational HTTP surface: health,
// sync status, metrics and a manual sync trigger.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	syncer "github.com/yymzk/calbridge/internal/app"
	"github.com/yymzk/calbridge/pkg/logger"
	"github.com/yymzk/calbridge/pkg/metrics"
)

// Trigger starts a sync cycle outside the regular schedule, blocking
// until the cycle finishes. The Scheduler satisfies it.
type Trigger interface {
	TriggerNow(ctx context.Context) error
}

// Server wires the operational HTTP routes.
type Server struct {
	tracker *syncer.Tracker
	trigger Trigger
	log     logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates the API server over the given sync state.
func NewServer(tracker *syncer.Tracker, trigger Trigger, opts ...Option) *Server {
	s := &Server{
		tracker: tracker,
		trigger: trigger,
		log:     logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/sync", s.handleSync)
	mux.Handle("/metrics", metrics.Handler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
