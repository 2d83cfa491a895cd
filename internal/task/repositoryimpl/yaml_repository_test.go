package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triageworks/sentinel/internal/task"
	"github.com/triageworks/sentinel/pkg/cerr"
	"github.com/triageworks/sentinel/pkg/storage"
)

func newRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		id, err := repo.Create(ctx, &task.Task{Summary: "t"})
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestIDsAreNeverReusedAfterDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id1, err := repo.Create(ctx, &task.Task{Summary: "first"})
	require.NoError(t, err)
	id2, err := repo.Create(ctx, &task.Task{Summary: "second"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id2))

	id3, err := repo.Create(ctx, &task.Task{Summary: "third"})
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
	assert.NotEqual(t, id1, id3)
}

func TestCreateDefaultsToPending(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &task.Task{Summary: "t"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Get(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestListNewestFirstAndStatusFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	approved := task.StatusApproved
	id1, err := repo.Create(ctx, &task.Task{Summary: "a"})
	require.NoError(t, err)
	id2, err := repo.Create(ctx, &task.Task{Summary: "b"})
	require.NoError(t, err)
	_, err = repo.Update(ctx, id1, task.Patch{Status: &approved})
	require.NoError(t, err)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id2, all[0].ID, "newest task listed first")

	pending, err := repo.List(ctx, task.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id2, pending[0].ID)

	completed, err := repo.List(ctx, task.StatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestUpdateAppliesOnlyPatchedFields(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &task.Task{
		Summary:   "original summary",
		ProjectID: "P1",
		Assignee:  "Alice",
	})
	require.NoError(t, err)

	newSummary := "edited summary"
	got, err := repo.Update(ctx, id, task.Patch{Summary: &newSummary})
	require.NoError(t, err)
	assert.Equal(t, "edited summary", got.Summary)
	assert.Equal(t, "P1", got.ProjectID)
	assert.Equal(t, "Alice", got.Assignee)
}

func TestDeleteRemovesTask(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &task.Task{Summary: "t"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.Get(ctx, id)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteNotFound(t *testing.T) {
	repo := newRepo(t)
	err := repo.Delete(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
