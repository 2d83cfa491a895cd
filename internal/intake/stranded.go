package intake

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/triageworks/sentinel/internal/config"
)

// ReportStranded logs files left behind in the staging and failed
// directories by a previous run. Staged leftovers mean a run died mid-flight
// or a task row exists without its archived file; both need an operator.
func ReportStranded(env *config.IntakeEnv) {
	for _, name := range stranded(env.StagingDir) {
		slog.Warn("file stranded in staging from a previous run, needs reconciliation",
			"path", filepath.Join(env.StagingDir, name))
	}
	for _, name := range stranded(env.FailedDir) {
		slog.Warn("unprocessed file in failed directory",
			"path", filepath.Join(env.FailedDir, name))
	}
}

func stranded(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".error") {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
