package config

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// APIKey protects the HTTP API when set.
	APIKey string `envconfig:"API_KEY"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:"."`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"todotxt/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type TodoEnv struct {
	File            string `envconfig:"FILE" default:"todo.txt"`
	DefaultPriority string `envconfig:"DEFAULT_PRIORITY" default:"C"`
	StrictSearch    bool   `envconfig:"STRICT_SEARCH" default:"false"`
	LegacyDateOrder bool   `envconfig:"LEGACY_DATE_ORDER" default:"false"`
	SortOnWrite     bool   `envconfig:"SORT_ON_WRITE" default:"true"`
}

type EventEnv struct {
	// Hook is a bash command run for each event, see eventbus.Hook.
	Hook        string        `envconfig:"HOOK"`
	HookEvents  []string      `envconfig:"HOOK_EVENTS"`
	HookTimeout time.Duration `envconfig:"HOOK_TIMEOUT" default:"15s"`
	// EventLogDir enables the event journal, relative to the storage base.
	EventLogDir string `envconfig:"EVENT_LOG_DIR"`
}

type Env struct {
	BaseEnv
	StorageEnv
	TodoEnv
	EventEnv
}

const namespace = "TODOTXT"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if _, err := todotxt.ParsePriority(env.DefaultPriority); err != nil {
		return nil, fmt.Errorf("failed to load env: %s_DEFAULT_PRIORITY: %w", namespace, err)
	}
	switch env.StorageEnv.Type {
	case "local", "s3":
	default:
		return nil, fmt.Errorf("failed to load env: unknown storage type %q", env.StorageEnv.Type)
	}
	if _, err := env.Hooks(); err != nil {
		return nil, fmt.Errorf("failed to load env: %s_HOOK: %w", namespace, err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (e *BaseEnv) Addr() string {
	return net.JoinHostPort(e.HTTPHost, e.HTTPPort)
}

// ParserOptions returns the parser settings selected by the environment.
func (e *TodoEnv) ParserOptions(clock todotxt.Clock) []todotxt.Option {
	opts := []todotxt.Option{todotxt.WithClock(clock)}
	if e.LegacyDateOrder {
		opts = append(opts, todotxt.WithDateOrder(todotxt.DateOrderCreationFirst))
	}
	return opts
}

// Priority is the priority given to new template lines. LoadEnv has
// already validated it.
func (e *TodoEnv) Priority() todotxt.Priority {
	p, _ := todotxt.ParsePriority(e.DefaultPriority)
	return p
}

// Hooks returns the configured event hooks, none when HOOK is unset.
func (e *EventEnv) Hooks() ([]*eventbus.Hook, error) {
	if e.Hook == "" {
		return nil, nil
	}
	events := make([]eventbus.EventType, len(e.HookEvents))
	for i, ev := range e.HookEvents {
		events[i] = eventbus.EventType(ev)
	}
	h, err := eventbus.NewHook(e.Hook, events...)
	if err != nil {
		return nil, err
	}
	return []*eventbus.Hook{h}, nil
}
