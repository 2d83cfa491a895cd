package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshot() *Snapshot {
	return &Snapshot{
		Projects: []Project{
			{ID: "SB-01", Name: "Stargate Bridge"},
			{ID: "AX-02", Name: "Axiom"},
		},
		Team: []TeamMember{
			{Name: "Alice", Projects: []string{"SB-01"}},
			{Name: "Bob", Projects: []string{"SB-01", "AX-02"}},
		},
	}
}

func TestKnownProject(t *testing.T) {
	s := snapshot()
	assert.True(t, s.KnownProject("SB-01"))
	assert.True(t, s.KnownProject("AX-02"))
	assert.False(t, s.KnownProject("ZZ-99"))
	assert.False(t, s.KnownProject(""))
}

func TestMayAssign(t *testing.T) {
	s := snapshot()
	assert.True(t, s.MayAssign("Alice", "SB-01"))
	assert.False(t, s.MayAssign("Alice", "AX-02"))
	assert.True(t, s.MayAssign("Bob", "AX-02"))
	assert.False(t, s.MayAssign("Mallory", "SB-01"), "unknown members may not be assigned")
}
