package refdata

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triageworks/sentinel/pkg/cerr"
)

// Server exposes the settings surface for the reference collections.
type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/projects", s.handleGetProjects)
	r.Put("/projects", s.handlePutProjects)
	r.Get("/team", s.handleGetTeam)
	r.Put("/team", s.handlePutTeam)
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

type teamResponse struct {
	Team []TeamMember `json:"team"`
}

func (s *Server) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := s.repo.Projects(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if projects == nil {
		projects = []Project{}
	}
	cerr.SetJSONResponse(ctx, projectsResponse{Projects: projects})
}

func (s *Server) handlePutProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req projectsResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	for _, p := range req.Projects {
		if p.ID == "" {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "project id is required", nil)
			return
		}
	}
	if err := s.repo.ReplaceProjects(ctx, req.Projects); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, req)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	team, err := s.repo.Team(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if team == nil {
		team = []TeamMember{}
	}
	cerr.SetJSONResponse(ctx, teamResponse{Team: team})
}

func (s *Server) handlePutTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req teamResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	for _, m := range req.Team {
		if m.Name == "" {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "team member name is required", nil)
			return
		}
	}
	if err := s.repo.ReplaceTeam(ctx, req.Team); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, req)
}
