package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/triageworks/sentinel/internal/refdata"
	"github.com/triageworks/sentinel/pkg/cerr"
	"github.com/triageworks/sentinel/pkg/storage"
)

const (
	projectsPath = "refdata/projects.yaml"
	teamPath     = "refdata/team.yaml"
)

// YAMLRepository stores the projects and team collections as two whole
// documents. Missing documents read as empty collections so a fresh install
// works before any settings have been saved.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

type projectsDoc struct {
	Projects []refdata.Project `yaml:"projects"`
}

type teamDoc struct {
	Team []refdata.TeamMember `yaml:"team"`
}

func (r *YAMLRepository) Projects(ctx context.Context) ([]refdata.Project, error) {
	data, err := r.storage.Read(ctx, projectsPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, cerr.WrapStorageReadError("projects", err)
	}
	var doc projectsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal projects: %w", err))
	}
	return doc.Projects, nil
}

func (r *YAMLRepository) Team(ctx context.Context) ([]refdata.TeamMember, error) {
	data, err := r.storage.Read(ctx, teamPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, cerr.WrapStorageReadError("team", err)
	}
	var doc teamDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal team: %w", err))
	}
	return doc.Team, nil
}

func (r *YAMLRepository) Snapshot(ctx context.Context) (*refdata.Snapshot, error) {
	projects, err := r.Projects(ctx)
	if err != nil {
		return nil, err
	}
	team, err := r.Team(ctx)
	if err != nil {
		return nil, err
	}
	return &refdata.Snapshot{Projects: projects, Team: team}, nil
}

func (r *YAMLRepository) ReplaceProjects(ctx context.Context, projects []refdata.Project) error {
	data, err := yaml.Marshal(projectsDoc{Projects: projects})
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal projects: %w", err))
	}
	if err := r.storage.Write(ctx, projectsPath, data); err != nil {
		return cerr.WrapStorageWriteError("projects", err)
	}
	return nil
}

func (r *YAMLRepository) ReplaceTeam(ctx context.Context, team []refdata.TeamMember) error {
	data, err := yaml.Marshal(teamDoc{Team: team})
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal team: %w", err))
	}
	if err := r.storage.Write(ctx, teamPath, data); err != nil {
		return cerr.WrapStorageWriteError("team", err)
	}
	return nil
}
