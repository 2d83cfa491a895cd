package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triageworks/sentinel/pkg/cerr"
)

func TestSanitizeProjectID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SB-01", "SB-01"},
		{"SB/01!", "SB01"},
		{"proj_7", "proj_7"},
		{"a b c", "abc"},
		{"../../etc", "etc"},
		{"///", "UNKNOWN"},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeProjectID(tt.in), "input %q", tt.in)
	}
}

func TestRelocate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "incoming.eml")
	require.NoError(t, os.WriteFile(source, []byte("content"), 0o644))
	target := filepath.Join(dir, "processed")

	dest, err := Relocate(source, target, "SB/01!", 42)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "SB01-#42.eml"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	_, err = os.Stat(source)
	assert.True(t, os.IsNotExist(err), "source should be gone after relocation")
}

func TestRelocateUnknownProject(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	dest, err := Relocate(source, filepath.Join(dir, "out"), "", 7)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN-#7.txt", filepath.Base(dest))
}

func TestRelocateMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Relocate(filepath.Join(dir, "gone.txt"), filepath.Join(dir, "out"), "SB-01", 1)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestRelocateCreatesTargetDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	dest, err := Relocate(source, filepath.Join(dir, "deep", "nested"), "P1", 3)
	require.NoError(t, err)
	_, err = os.Stat(dest)
	require.NoError(t, err)
}
