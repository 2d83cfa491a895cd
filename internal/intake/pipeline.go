package intake

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/triageworks/sentinel/internal/classify"
	"github.com/triageworks/sentinel/internal/config"
	"github.com/triageworks/sentinel/internal/eventbus"
	"github.com/triageworks/sentinel/internal/extract"
	"github.com/triageworks/sentinel/internal/refdata"
	"github.com/triageworks/sentinel/internal/task"
	"github.com/triageworks/sentinel/pkg/cerr"
)

// Pipeline drives one observed file through claim, extraction,
// classification, recording, and relocation. Every failure is contained to
// that file's run: the watcher keeps feeding other files regardless.
type Pipeline struct {
	env        *config.IntakeEnv
	classifier classify.Classifier
	tasks      task.Repository
	refs       refdata.Repository
	bus        *eventbus.Bus
}

func NewPipeline(
	env *config.IntakeEnv,
	classifier classify.Classifier,
	tasks task.Repository,
	refs refdata.Repository,
	bus *eventbus.Bus,
) *Pipeline {
	return &Pipeline{
		env:        env,
		classifier: classifier,
		tasks:      tasks,
		refs:       refs,
		bus:        bus,
	}
}

// Process runs the full state machine for one inbox file. The returned error
// is for the caller's log; by the time Process returns, the file is already
// in its terminal place (processed/, failed/, or parked in staging for the
// one relocation-divergence case).
func (p *Pipeline) Process(ctx context.Context, path string) error {
	sourceName := filepath.Base(path)
	slog.Info("processing file", "path", path)

	// Claim: the atomic rename out of the inbox is the only thing that
	// prevents two runs from processing the same file.
	staged, err := p.claim(path)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			slog.Warn("file vanished before claim, abandoning", "path", path)
			return nil
		}
		return err
	}

	subject, body := extract.Extract(staged)
	if body == "" {
		p.fail(staged, "no content extracted")
		return nil
	}

	refs, err := p.refs.Snapshot(ctx)
	if err != nil {
		p.fail(staged, "failed to load reference data: "+err.Error())
		return err
	}

	proposal, err := p.classifier.Classify(ctx, body, refs)
	if err != nil {
		if cerr.IsCode(err, cerr.Canceled) {
			// Shutdown mid-run is not a classification verdict. The file
			// stays claimed in staging and the next start re-drives it.
			slog.Warn("classification canceled, file stays in staging", "path", staged)
			return err
		}
		p.fail(staged, "classification failed: "+err.Error())
		return err
	}

	id, err := p.tasks.Create(ctx, &task.Task{
		SourceFile:      sourceName,
		OriginalSubject: subject,
		Summary:         proposal.Summary,
		Reasoning:       proposal.Reasoning,
		Deadline:        proposal.Deadline,
		ProjectID:       proposal.ProjectID,
		Assignee:        proposal.Assignee,
		Confidence:      proposal.Confidence,
		Status:          task.StatusPending,
	})
	if err != nil {
		p.fail(staged, "failed to record task: "+err.Error())
		return err
	}

	finalPath, err := Relocate(staged, p.env.ProcessedDir, proposal.ProjectID, id)
	if err != nil {
		// The task row exists but the file never reached the archive.
		// This is the one state where record and artifact diverge; it
		// stays in staging and must be reconciled by an operator.
		slog.Error("task recorded but relocation failed, manual reconciliation required",
			"task_id", id, "staged_path", staged, "error", err)
		return err
	}

	p.bus.PublishNew(eventbus.TypeTaskCreated, strconv.Itoa(id), proposal.Summary, map[string]string{
		"project_id":  proposal.ProjectID,
		"assignee":    proposal.Assignee,
		"source_file": sourceName,
	})
	slog.Info("file processed", "task_id", id, "path", finalPath)
	return nil
}

// claim moves the file into staging. Plain rename only: claim exclusivity
// rests on the filesystem's rename semantics, so inbox and staging must live
// on the same filesystem. A staging name collision gets a unique suffix
// instead of overwriting.
func (p *Pipeline) claim(path string) (string, error) {
	if err := os.MkdirAll(p.env.StagingDir, 0o755); err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to create staging directory", err)
	}

	dest := filepath.Join(p.env.StagingDir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		dest = uniqueName(dest)
	}

	if err := os.Rename(path, dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", cerr.NewError(cerr.NotFound, "source file not found", err)
		}
		return "", cerr.NewError(cerr.Internal, "failed to claim file", err)
	}
	return dest, nil
}

// fail routes a non-recoverable file to the failed directory with an error
// sidecar, so staging never accumulates ambiguous leftovers.
func (p *Pipeline) fail(staged, reason string) {
	slog.Warn("routing file to failed directory", "path", staged, "reason", reason)

	if err := os.MkdirAll(p.env.FailedDir, 0o755); err != nil {
		slog.Error("failed to create failed directory, file stays in staging", "path", staged, "error", err)
		return
	}
	dest := filepath.Join(p.env.FailedDir, filepath.Base(staged))
	if _, err := os.Stat(dest); err == nil {
		dest = uniqueName(dest)
	}
	if err := moveFile(staged, dest); err != nil {
		slog.Error("failed to move file to failed directory", "path", staged, "error", err)
		return
	}
	if err := os.WriteFile(dest+".error", []byte(reason+"\n"), 0o644); err != nil {
		slog.Error("failed to write error sidecar", "path", dest, "error", err)
	}
}

// uniqueName disambiguates a colliding filename with a ULID suffix before
// the extension.
func uniqueName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + ulid.Make().String() + ext
}
