package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triageworks/sentinel/internal/classify"
	"github.com/triageworks/sentinel/internal/config"
	"github.com/triageworks/sentinel/internal/eventbus"
	"github.com/triageworks/sentinel/internal/refdata"
	"github.com/triageworks/sentinel/internal/task"
	taskrepo "github.com/triageworks/sentinel/internal/task/repositoryimpl"
	"github.com/triageworks/sentinel/pkg/cerr"
	"github.com/triageworks/sentinel/pkg/storage"
)

type stubClassifier struct {
	proposal *classify.Proposal
	err      error
	calls    atomic.Int32
}

func (s *stubClassifier) Classify(_ context.Context, _ string, _ *refdata.Snapshot) (*classify.Proposal, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.proposal, nil
}

type stubRefdata struct{}

func (stubRefdata) Projects(context.Context) ([]refdata.Project, error)      { return nil, nil }
func (stubRefdata) Team(context.Context) ([]refdata.TeamMember, error)       { return nil, nil }
func (stubRefdata) ReplaceProjects(context.Context, []refdata.Project) error { return nil }
func (stubRefdata) ReplaceTeam(context.Context, []refdata.TeamMember) error  { return nil }
func (stubRefdata) Snapshot(context.Context) (*refdata.Snapshot, error) {
	return &refdata.Snapshot{}, nil
}

type fixture struct {
	env      *config.IntakeEnv
	pipeline *Pipeline
	tasks    task.Repository
	bus      *eventbus.Bus
}

func newFixture(t *testing.T, classifier classify.Classifier) *fixture {
	t.Helper()
	root := t.TempDir()
	env := &config.IntakeEnv{
		InboxDir:      filepath.Join(root, "inbox"),
		StagingDir:    filepath.Join(root, "staging"),
		ProcessedDir:  filepath.Join(root, "processed"),
		FailedDir:     filepath.Join(root, "failed"),
		WatchDebounce: 10 * time.Millisecond,
	}
	require.NoError(t, os.MkdirAll(env.InboxDir, 0o755))

	store, err := storage.NewLocalStorage(filepath.Join(root, "data"))
	require.NoError(t, err)
	tasks := taskrepo.NewYAMLRepository(store)
	bus := eventbus.New()

	return &fixture{
		env:      env,
		pipeline: NewPipeline(env, classifier, tasks, stubRefdata{}, bus),
		tasks:    tasks,
		bus:      bus,
	}
}

func (f *fixture) dropFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.env.InboxDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPipelineProcessSuccess(t *testing.T) {
	classifier := &stubClassifier{proposal: &classify.Proposal{
		Summary:    "Update firewall rules",
		Deadline:   "2026-09-12",
		ProjectID:  "SB-01",
		Assignee:   "Alice",
		Reasoning:  "security request",
		Confidence: 0.9,
	}}
	f := newFixture(t, classifier)
	_, events := f.bus.Subscribe(4)

	path := f.dropFile(t, "request.txt", "please update the firewall rules")
	require.NoError(t, f.pipeline.Process(context.Background(), path))

	got, err := f.tasks.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "request.txt", got.SourceFile)
	assert.Equal(t, "request.txt", got.OriginalSubject)
	assert.Equal(t, "Update firewall rules", got.Summary)
	assert.Equal(t, task.StatusPending, got.Status)

	assert.Equal(t, []string{"SB-01-#1.txt"}, dirNames(t, f.env.ProcessedDir))
	assert.Empty(t, dirNames(t, f.env.StagingDir))
	assert.Empty(t, dirNames(t, f.env.InboxDir))

	select {
	case ev := <-events:
		assert.Equal(t, eventbus.TypeTaskCreated, ev.Type)
		assert.Equal(t, "1", ev.ResourceID)
	default:
		t.Fatal("expected a task.created event")
	}
}

func TestPipelineClassificationFailure(t *testing.T) {
	f := newFixture(t, &stubClassifier{err: errors.New("model unavailable")})

	path := f.dropFile(t, "broken.txt", "some content")
	require.Error(t, f.pipeline.Process(context.Background(), path))

	// No task recorded, file parked in failed/ with an error sidecar.
	tasks, err := f.tasks.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.ElementsMatch(t, []string{"broken.txt", "broken.txt.error"}, dirNames(t, f.env.FailedDir))
	assert.Empty(t, dirNames(t, f.env.StagingDir))

	reason, err := os.ReadFile(filepath.Join(f.env.FailedDir, "broken.txt.error"))
	require.NoError(t, err)
	assert.Contains(t, string(reason), "model unavailable")
}

func TestPipelineCanceledClassificationStaysInStaging(t *testing.T) {
	f := newFixture(t, &stubClassifier{
		err: cerr.NewError(cerr.Canceled, "classification canceled", context.Canceled),
	})

	path := f.dropFile(t, "midflight.txt", "some content")
	require.Error(t, f.pipeline.Process(context.Background(), path))

	// A canceled run is not a verdict on the file: it stays claimed in
	// staging so the next start re-drives it, and nothing is recorded.
	assert.Equal(t, []string{"midflight.txt"}, dirNames(t, f.env.StagingDir))
	assert.Empty(t, dirNames(t, f.env.FailedDir))

	tasks, err := f.tasks.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestPipelineEmptyBodyGoesToFailed(t *testing.T) {
	classifier := &stubClassifier{proposal: &classify.Proposal{Summary: "x"}}
	f := newFixture(t, classifier)

	path := f.dropFile(t, "image.png", "binary stuff")
	require.NoError(t, f.pipeline.Process(context.Background(), path))

	assert.Zero(t, classifier.calls.Load(), "classifier must not run without extracted content")
	assert.Contains(t, dirNames(t, f.env.FailedDir), "image.png")
}

func TestPipelineMissingFileIsAbandoned(t *testing.T) {
	f := newFixture(t, &stubClassifier{proposal: &classify.Proposal{Summary: "x"}})

	err := f.pipeline.Process(context.Background(), filepath.Join(f.env.InboxDir, "never-existed.txt"))
	assert.NoError(t, err)

	tasks, listErr := f.tasks.List(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, tasks)
}

func TestPipelineFailureIsContainedPerFile(t *testing.T) {
	classifier := &stubClassifier{proposal: &classify.Proposal{Summary: "ok", ProjectID: "P1"}}
	f := newFixture(t, classifier)

	bad := f.dropFile(t, "bad.png", "noise")
	good := f.dropFile(t, "good.txt", "real request")

	require.NoError(t, f.pipeline.Process(context.Background(), bad))
	require.NoError(t, f.pipeline.Process(context.Background(), good))

	tasks, err := f.tasks.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "good.txt", tasks[0].SourceFile)
}

func TestPipelineStagingNameCollision(t *testing.T) {
	classifier := &stubClassifier{proposal: &classify.Proposal{Summary: "ok", ProjectID: "P1"}}
	f := newFixture(t, classifier)

	require.NoError(t, os.MkdirAll(f.env.StagingDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.env.StagingDir, "dup.txt"), []byte("already staged"), 0o644))

	path := f.dropFile(t, "dup.txt", "new arrival")
	require.NoError(t, f.pipeline.Process(context.Background(), path))

	// The pre-existing staged file is untouched.
	data, err := os.ReadFile(filepath.Join(f.env.StagingDir, "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "already staged", string(data))

	processed := dirNames(t, f.env.ProcessedDir)
	require.Len(t, processed, 1)
	assert.Equal(t, "P1-#1.txt", processed[0])
}
