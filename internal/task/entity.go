package task

import "time"

// Status is the triage lifecycle stage of a persisted task. Rejection is a
// deletion, not a status: rejected tasks are removed and never listed again.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

// Sentinel values for classification fields that could not be resolved.
const (
	DeadlineNone   = "None"
	ProjectUnknown = "UNKNOWN"
	Unassigned     = "Unassigned"
)

type Task struct {
	ID              int       `yaml:"id" json:"id"`
	SourceFile      string    `yaml:"source_file" json:"source_file"`
	OriginalSubject string    `yaml:"original_subject" json:"original_subject"`
	Summary         string    `yaml:"summary" json:"summary"`
	Reasoning       string    `yaml:"reasoning" json:"reasoning"`
	Deadline        string    `yaml:"deadline" json:"deadline"`
	ProjectID       string    `yaml:"project_id" json:"project_id"`
	Assignee        string    `yaml:"assignee" json:"assignee"`
	Confidence      float64   `yaml:"confidence" json:"confidence"`
	Status          Status    `yaml:"status" json:"status"`
	CreatedAt       time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt       time.Time `yaml:"updated_at" json:"updated_at"`
}
