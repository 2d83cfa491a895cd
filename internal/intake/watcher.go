package intake

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"

	"github.com/triageworks/sentinel/internal/config"
)

// Watcher owns the inbox fsnotify listener as a managed singleton: Start and
// Stop are idempotent and safe to call from the dashboard toggle at any
// time. Pipeline runs execute on their own goroutines so a slow
// classification call never blocks event intake.
type Watcher struct {
	env      *config.IntakeEnv
	pipeline *Pipeline

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewWatcher(env *config.IntakeEnv, pipeline *Pipeline) *Watcher {
	return &Watcher{
		env:      env,
		pipeline: pipeline,
		inflight: make(map[string]struct{}),
	}
}

// Start begins watching the inbox. Calling Start while running is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.env.InboxDir, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.env.InboxDir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch inbox %s: %w", w.env.InboxDir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.loop(watchCtx, fsw)

	slog.Info("inbox watcher started", "inbox", w.env.InboxDir)
	return nil
}

// Stop halts event intake and waits for in-flight pipeline runs to finish.
// Calling Stop while stopped is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	slog.Info("inbox watcher stopped")
}

func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer fsw.Close()

	wg := conc.NewWaitGroup()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			path := event.Name

			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.IsDir() {
				// Watch new subdirectories so the inbox is effectively
				// recursive.
				if err := fsw.Add(path); err != nil {
					slog.Warn("failed to watch inbox subdirectory", "path", path, "error", err)
				}
				continue
			}

			if !w.markInFlight(path) {
				slog.Debug("skipping duplicate event", "path", path)
				continue
			}

			slog.Info("new file detected", "path", path)
			wg.Go(func() {
				defer w.clearInFlight(path)
				w.processAfterDebounce(ctx, path)
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", "error", err)
		}
	}
}

// processAfterDebounce waits the debounce delay so files still being written
// when the create event fires have a chance to finish. It is a heuristic,
// not a guarantee.
func (w *Watcher) processAfterDebounce(ctx context.Context, path string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.env.WatchDebounce):
	}

	if _, err := os.Stat(path); err != nil {
		slog.Warn("file vanished before processing", "path", path)
		return
	}

	if err := w.pipeline.Process(ctx, path); err != nil {
		slog.Error("pipeline run failed", "path", path, "error", err)
	}
}

func (w *Watcher) markInFlight(path string) bool {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	if _, ok := w.inflight[path]; ok {
		return false
	}
	w.inflight[path] = struct{}{}
	return true
}

func (w *Watcher) clearInFlight(path string) {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	delete(w.inflight, path)
}
