package intake

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triageworks/sentinel/pkg/cerr"
)

// Server exposes the watcher lifecycle toggle to the dashboard. baseCtx is
// the process-lifetime context: a watcher started from a request must
// outlive that request and die with the process instead.
type Server struct {
	baseCtx context.Context
	watcher *Watcher
}

func NewServer(baseCtx context.Context, watcher *Watcher) *Server {
	return &Server{baseCtx: baseCtx, watcher: watcher}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/watcher", s.handleStatus)
	r.Post("/watcher", s.handleToggle)
}

type watcherState struct {
	Running bool `json:"running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), watcherState{Running: s.watcher.Running()})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req watcherState
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	if req.Running {
		if err := s.watcher.Start(s.baseCtx); err != nil {
			cerr.SetNewJSONError(ctx, cerr.Internal, "failed to start watcher", err)
			return
		}
	} else {
		s.watcher.Stop()
	}
	cerr.SetJSONResponse(ctx, watcherState{Running: s.watcher.Running()})
}
