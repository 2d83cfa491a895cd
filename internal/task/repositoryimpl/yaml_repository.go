package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/triageworks/sentinel/internal/task"
	"github.com/triageworks/sentinel/pkg/cerr"
	"github.com/triageworks/sentinel/pkg/storage"
)

const (
	tasksPrefix = "tasks"
	counterPath = tasksPrefix + "/counter.yaml"
)

// YAMLRepository persists one YAML document per task plus a counter document
// holding the last assigned id. The mutex serializes all writers: the
// pipeline and the dashboard never race on the counter or on a row.
type YAMLRepository struct {
	storage storage.Storage
	mu      sync.Mutex
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id int) string {
	return fmt.Sprintf("%s/%d.yaml", tasksPrefix, id)
}

type counter struct {
	LastID int `yaml:"last_id"`
}

// nextID increments and persists the id counter. The counter is written
// before the row so a crash between the two burns the id instead of reusing
// it.
func (r *YAMLRepository) nextID(ctx context.Context) (int, error) {
	var c counter
	data, err := r.storage.Read(ctx, counterPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return 0, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task counter: %w", err))
		}
	case errors.Is(err, storage.ErrNotFound):
		// first task ever
	default:
		return 0, cerr.WrapStorageReadError("task counter", err)
	}

	c.LastID++
	data, err = yaml.Marshal(&c)
	if err != nil {
		return 0, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task counter: %w", err))
	}
	if err := r.storage.Write(ctx, counterPath, data); err != nil {
		return 0, cerr.WrapStorageWriteError("task counter", err)
	}
	return c.LastID, nil
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.nextID(ctx)
	if err != nil {
		return 0, err
	}
	t.ID = id
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = task.StatusPending
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return 0, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(id), data); err != nil {
		return 0, cerr.WrapStorageWriteError("task", err)
	}
	return id, nil
}

func (r *YAMLRepository) Get(ctx context.Context, id int) (*task.Task, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context, status task.Status) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}

	var all []*task.Task
	for _, p := range paths {
		if p == counterPath {
			continue
		}
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		all = append(all, &t)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, id int, patch task.Patch) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.OriginalSubject != nil {
		t.OriginalSubject = *patch.OriginalSubject
	}
	if patch.Summary != nil {
		t.Summary = *patch.Summary
	}
	if patch.Reasoning != nil {
		t.Reasoning = *patch.Reasoning
	}
	if patch.Deadline != nil {
		t.Deadline = *patch.Deadline
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()

	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(id), data); err != nil {
		return nil, cerr.WrapStorageWriteError("task", err)
	}
	return t, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("task", err)
	}
	return nil
}
