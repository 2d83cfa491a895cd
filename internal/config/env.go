package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type IntakeEnv struct {
	InboxDir      string        `envconfig:"INBOX_DIR" default:"sentinel/inbox"`
	StagingDir    string        `envconfig:"STAGING_DIR" default:"sentinel/staging"`
	ProcessedDir  string        `envconfig:"PROCESSED_DIR" default:"sentinel/processed"`
	FailedDir     string        `envconfig:"FAILED_DIR" default:"sentinel/failed"`
	WatchDebounce time.Duration `envconfig:"WATCH_DEBOUNCE" default:"1s"`
	WatchAutoload bool          `envconfig:"WATCH_AUTOSTART" default:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".sentinel/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"sentinel/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type ClassifyEnv struct {
	Model      string        `envconfig:"CLASSIFY_MODEL"`
	Timeout    time.Duration `envconfig:"CLASSIFY_TIMEOUT" default:"120s"`
	MaxRetries int           `envconfig:"CLASSIFY_MAX_RETRIES" default:"3"`
}

type VAPIDEnv struct {
	PublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	PrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	Subscriber string `envconfig:"VAPID_SUBSCRIBER"`
}

type Env struct {
	BaseEnv
	IntakeEnv
	StorageEnv
	ClassifyEnv
	VAPIDEnv
}

const namespace = "SENTINEL"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func (e *VAPIDEnv) Configured() bool {
	return e != nil && e.PublicKey != "" && e.PrivateKey != ""
}

func IntakeEnvFromEnv(env *Env) *IntakeEnv {
	return &env.IntakeEnv
}

func ClassifyEnvFromEnv(env *Env) *ClassifyEnv {
	return &env.ClassifyEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
