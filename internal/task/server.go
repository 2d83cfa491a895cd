package task

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/triageworks/sentinel/internal/eventbus"
	"github.com/triageworks/sentinel/pkg/cerr"
)

// Server exposes the task query/update surface consumed by the dashboard.
type Server struct {
	repo Repository
	bus  *eventbus.Bus
}

func NewServer(repo Repository, bus *eventbus.Bus) *Server {
	return &Server{repo: repo, bus: bus}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Get("/tasks/{id}", s.handleGet)
	r.Patch("/tasks/{id}", s.handleUpdate)
	r.Post("/tasks/{id}/approve", s.handleApprove)
	r.Post("/tasks/{id}/archive", s.handleArchive)
	r.Delete("/tasks/{id}", s.handleReject)
}

type listResponse struct {
	Tasks []*Task `json:"tasks"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid status filter", nil)
		return
	}
	tasks, err := s.repo.List(ctx, status)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, listResponse{Tasks: tasks})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

type updateRequest struct {
	OriginalSubject *string `json:"original_subject"`
	Summary         *string `json:"summary"`
	Reasoning       *string `json:"reasoning"`
	Deadline        *string `json:"deadline"`
	ProjectID       *string `json:"project_id"`
	Assignee        *string `json:"assignee"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.repo.Update(ctx, id, Patch{
		OriginalSubject: req.OriginalSubject,
		Summary:         req.Summary,
		Reasoning:       req.Reasoning,
		Deadline:        req.Deadline,
		ProjectID:       req.ProjectID,
		Assignee:        req.Assignee,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskUpdated, strconv.Itoa(id), "", nil)
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, StatusPending, StatusApproved)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, StatusApproved, StatusCompleted)
}

// transition moves a task from one status to the next. The triage lifecycle
// is strictly PENDING -> APPROVED -> COMPLETED; anything else is a
// precondition failure.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, from, to Status) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if t.Status != from {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "task is not "+string(from), nil)
		return
	}
	updated, err := s.repo.Update(ctx, id, Patch{Status: &to})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskUpdated, strconv.Itoa(id), string(to), nil)
	cerr.SetJSONResponse(ctx, updated)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeTaskDeleted, strconv.Itoa(id), "", nil)
	cerr.SetJSONResponse(ctx, map[string]bool{"deleted": true})
}

func parseID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, cerr.NewError(cerr.InvalidArgument, "invalid task id", err)
	}
	return id, nil
}
