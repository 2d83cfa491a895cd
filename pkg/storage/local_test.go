package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "tasks/1.yaml", []byte("id: 1")))

	data, err := s.Read(ctx, "tasks/1.yaml")
	require.NoError(t, err)
	assert.Equal(t, "id: 1", string(data))
}

func TestReadNotFound(t *testing.T) {
	s := newLocal(t)
	_, err := s.Read(context.Background(), "missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteOverwrites(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "doc.yaml", []byte("v1")))
	require.NoError(t, s.Write(ctx, "doc.yaml", []byte("v2")))

	data, err := s.Read(ctx, "doc.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestDelete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "doc.yaml", []byte("x")))
	require.NoError(t, s.Delete(ctx, "doc.yaml"))

	_, err := s.Read(ctx, "doc.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Delete(ctx, "doc.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListSkipsDirectories(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "tasks/1.yaml", []byte("a")))
	require.NoError(t, s.Write(ctx, "tasks/2.yaml", []byte("b")))
	require.NoError(t, s.Write(ctx, "tasks/sub/3.yaml", []byte("c")))

	paths, err := s.List(ctx, "tasks")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tasks/1.yaml", "tasks/2.yaml"}, paths)
}

func TestListMissingPrefixIsEmpty(t *testing.T) {
	s := newLocal(t)
	paths, err := s.List(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
