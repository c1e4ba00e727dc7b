package stubsource

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/yymzk/calbridge/internal/domain/schedule"
	"github.com/yymzk/calbridge/pkg/logger"
)

// Server serves generated events over the source calendar's endpoints:
// GET /events and GET /events/{id}. Mutating the set between requests
// (Replace, Drop, Bump) simulates edits happening at the source.
type Server struct {
	mu     sync.RWMutex
	events map[string]schedule.SourceEvent
	log    logger.Logger
}

// NewServer creates a server over the given initial events.
func NewServer(events []schedule.SourceEvent) *Server {
	s := &Server{
		events: make(map[string]schedule.SourceEvent, len(events)),
		log:    logger.Get().Named("stubsource"),
	}
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return s
}

// Replace swaps the whole event set.
func (s *Server) Replace(events []schedule.SourceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]schedule.SourceEvent, len(events))
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
}

// Drop deletes one event, as a user would from the source UI.
func (s *Server) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
}

// Bump rewrites one event's version, simulating an edit.
func (s *Server) Bump(id, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		ev.Version = version
		s.events[id] = ev
	}
}

// Register attaches the source API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/events", s.handleList)
	mux.HandleFunc("/events/", s.handleGet)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]schedule.SourceEvent, 0, len(s.events))
	for _, ev := range s.events {
		list = append(list, ev)
	}
	s.mu.RUnlock()

	s.log.Debug(r.Context(), "serving event window", logger.Int("count", len(list)))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"events": list})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/events/")

	s.mu.RLock()
	ev, ok := s.events[id]
	s.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(ev)
}
