package refdata

// Project is a reference entity fed into classification and used by the
// dashboard to validate project edits.
type Project struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Context string `yaml:"context" json:"context"`
}

// TeamMember is a reference entity describing who can be assigned what.
// Projects lists the project ids the member may be assigned to.
type TeamMember struct {
	Name     string   `yaml:"name" json:"name"`
	Role     string   `yaml:"role" json:"role"`
	Duties   []string `yaml:"duties" json:"duties"`
	Projects []string `yaml:"projects" json:"projects"`
}

// Snapshot is a whole-collection read of the reference data, taken before
// each classification call so the prompt and any validation see one
// consistent view.
type Snapshot struct {
	Projects []Project
	Team     []TeamMember
}

// KnownProject reports whether id names a project in the snapshot.
func (s *Snapshot) KnownProject(id string) bool {
	for _, p := range s.Projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// MayAssign reports whether the named member is allowed to work on the
// project. Unknown members may not be assigned anything.
func (s *Snapshot) MayAssign(member, projectID string) bool {
	for _, m := range s.Team {
		if m.Name != member {
			continue
		}
		for _, p := range m.Projects {
			if p == projectID {
				return true
			}
		}
		return false
	}
	return false
}
