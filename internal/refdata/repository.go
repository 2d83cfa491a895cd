package refdata

import "context"

type Repository interface {
	Projects(ctx context.Context) ([]Project, error)
	Team(ctx context.Context) ([]TeamMember, error)
	// Snapshot reads both collections.
	Snapshot(ctx context.Context) (*Snapshot, error)
	ReplaceProjects(ctx context.Context, projects []Project) error
	ReplaceTeam(ctx context.Context, team []TeamMember) error
}
