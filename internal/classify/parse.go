package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/triageworks/sentinel/internal/task"
)

// ParseProposal extracts the proposal JSON from the model's output. Models
// occasionally wrap the object in a code fence or surround it with prose, so
// the parser takes the outermost brace pair of the remaining text.
func ParseProposal(raw string) (*Proposal, error) {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var p Proposal
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("invalid proposal JSON: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// normalize fills unresolved fields with their sentinel values and clamps
// confidence into [0, 1].
func normalize(p *Proposal) {
	if strings.TrimSpace(p.Deadline) == "" {
		p.Deadline = task.DeadlineNone
	}
	if strings.TrimSpace(p.ProjectID) == "" {
		p.ProjectID = task.ProjectUnknown
	}
	if strings.TrimSpace(p.Assignee) == "" {
		p.Assignee = task.Unassigned
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 1 {
		p.Confidence = 1
	}
}
