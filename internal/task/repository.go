package task

import "context"

// Patch is a partial update. Nil fields are left untouched. ID, SourceFile,
// and Confidence are never patchable; Status changes only through the
// approve/archive transitions.
type Patch struct {
	OriginalSubject *string
	Summary         *string
	Reasoning       *string
	Deadline        *string
	ProjectID       *string
	Assignee        *string
	Status          *Status
}

type Repository interface {
	// Create assigns the next id to t, persists it, and returns the id.
	// Assigned ids are monotonically increasing and never reused, even
	// after Delete.
	Create(ctx context.Context, t *Task) (int, error)
	Get(ctx context.Context, id int) (*Task, error)
	// List returns tasks newest id first. An empty status returns all.
	List(ctx context.Context, status Status) ([]*Task, error)
	Update(ctx context.Context, id int, patch Patch) (*Task, error)
	Delete(ctx context.Context, id int) error
}
