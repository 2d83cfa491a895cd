// Package classify produces structured task proposals from correspondence
// text by delegating to the Claude agent CLI. The reference data (projects
// and team) is passed explicitly per call so the prompt always reflects the
// caller's snapshot and tests can run against fixtures.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	claudeagent "github.com/kazz187/claude-agent-sdk-go"

	"github.com/triageworks/sentinel/internal/config"
	"github.com/triageworks/sentinel/internal/refdata"
	"github.com/triageworks/sentinel/internal/task"
	"github.com/triageworks/sentinel/pkg/cerr"
)

// Proposal is the unpersisted classification result for one document.
type Proposal struct {
	Summary    string  `json:"summary"`
	Deadline   string  `json:"deadline"`
	ProjectID  string  `json:"project_id"`
	Assignee   string  `json:"assignee"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

type Classifier interface {
	Classify(ctx context.Context, body string, refs *refdata.Snapshot) (*Proposal, error)
}

const initialBackoff = 2 * time.Second

// ClaudeClassifier calls the Claude agent with a bounded number of retries.
// It never fabricates a proposal: when the model stays unreachable or keeps
// returning unparseable output, Classify returns a typed Unavailable error
// and the caller decides what happens to the file.
type ClaudeClassifier struct {
	env *config.ClassifyEnv
}

func NewClaudeClassifier(env *config.ClassifyEnv) *ClaudeClassifier {
	if env.Model != "" {
		// The agent CLI runs as a child process and picks the model up
		// from its environment.
		os.Setenv("ANTHROPIC_MODEL", env.Model)
	}
	return &ClaudeClassifier{env: env}
}

func (c *ClaudeClassifier) Classify(ctx context.Context, body string, refs *refdata.Snapshot) (*Proposal, error) {
	prompt := buildUserPrompt(body)
	systemPrompt := buildSystemPrompt(refs)
	maxTurns := 1

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < c.env.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("classification retry", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, cerr.NewError(cerr.Canceled, "classification canceled", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		proposal, err := c.runOnce(ctx, prompt, systemPrompt, &maxTurns)
		if err == nil {
			c.warnAdvisoryViolations(proposal, refs)
			return proposal, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, cerr.NewError(cerr.Canceled, "classification canceled", ctx.Err())
		}
	}
	return nil, cerr.NewError(cerr.Unavailable, "classification unavailable", lastErr)
}

func (c *ClaudeClassifier) runOnce(ctx context.Context, prompt, systemPrompt string, maxTurns *int) (*Proposal, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.env.Timeout)
	defer cancel()

	opts := &claudeagent.ClaudeAgentOptions{
		SystemPrompt: systemPrompt,
		MaxTurns:     maxTurns,
	}
	result, err := claudeagent.RunQuerySync(callCtx, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("claude query failed: %w", err)
	}
	if result.Result == nil {
		return nil, fmt.Errorf("claude returned no result")
	}
	if result.Result.IsError {
		msg := result.Result.Result
		if msg == "" {
			msg = "claude returned an error"
		}
		return nil, fmt.Errorf("claude error: %s", msg)
	}

	proposal, err := ParseProposal(result.Result.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proposal: %w", err)
	}
	return proposal, nil
}

// warnAdvisoryViolations logs when the model ignored the assignment rule.
// The rule is advisory in the prompt, not mechanically enforced here; the
// dashboard validates before treating the proposal as authoritative.
func (c *ClaudeClassifier) warnAdvisoryViolations(p *Proposal, refs *refdata.Snapshot) {
	if p.Assignee == "" || p.Assignee == task.Unassigned {
		return
	}
	if !refs.MayAssign(p.Assignee, p.ProjectID) {
		slog.Warn("proposed assignee is not permitted on project",
			"assignee", p.Assignee, "project_id", p.ProjectID)
	}
}
