package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/triageworks/sentinel/internal/classify"
	"github.com/triageworks/sentinel/internal/config"
	"github.com/triageworks/sentinel/internal/eventbus"
	"github.com/triageworks/sentinel/internal/intake"
	"github.com/triageworks/sentinel/internal/pushnotification"
	pushsubrepo "github.com/triageworks/sentinel/internal/pushsubscription/repositoryimpl"
	"github.com/triageworks/sentinel/internal/refdata"
	refdatarepo "github.com/triageworks/sentinel/internal/refdata/repositoryimpl"
	"github.com/triageworks/sentinel/internal/task"
	taskrepo "github.com/triageworks/sentinel/internal/task/repositoryimpl"
	"github.com/triageworks/sentinel/pkg/clog"
	"github.com/triageworks/sentinel/pkg/storage"

	server "github.com/triageworks/sentinel/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	refdataRepo := refdatarepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	// Setup intake pipeline and watcher
	classifier := classify.NewClaudeClassifier(config.ClassifyEnvFromEnv(env))
	pipeline := intake.NewPipeline(config.IntakeEnvFromEnv(env), classifier, taskRepo, refdataRepo, bus)
	watcher := intake.NewWatcher(config.IntakeEnvFromEnv(env), pipeline)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushServer := pushnotification.NewServer(vapidEnv, pushSubRepo, pushSender)
	pushDispatcher := pushnotification.NewDispatcher(bus, taskRepo, pushSender)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup servers
	taskServer := task.NewServer(taskRepo, bus)
	refdataServer := refdata.NewServer(refdataRepo)
	intakeServer := intake.NewServer(ctx, watcher)
	eventServer := eventbus.NewServer(bus)

	srv := server.NewServer(
		env,
		taskServer,
		refdataServer,
		intakeServer,
		pushServer,
		eventServer,
	)

	go pushDispatcher.Start(ctx)

	intake.ReportStranded(config.IntakeEnvFromEnv(env))

	if env.IntakeEnv.WatchAutoload {
		if err := watcher.Start(ctx); err != nil {
			slog.Error("failed to start inbox watcher", "error", err)
			os.Exit(1)
		}
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	watcher.Stop()

	// Give active connections time to finish after stream contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
