package eventbus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const DefaultHookTimeout = 15 * time.Second

// Hook is a shell command run for matching events. It is interpreted in
// process, so it behaves the same on every platform. The event is passed in
// the TODOTXT_EVENT_* environment variables.
type Hook struct {
	Command string
	// Events limits the hook to these types. Empty means every event.
	Events []EventType

	prog *syntax.File
}

// NewHook parses command as a bash script.
func NewHook(command string, events ...EventType) (*Hook, error) {
	prog, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(command), "hook")
	if err != nil {
		return nil, fmt.Errorf("invalid hook command: %w", err)
	}
	return &Hook{Command: command, Events: events, prog: prog}, nil
}

func (h *Hook) Matches(e *Event) bool {
	return len(h.Events) == 0 || slices.Contains(h.Events, e.Type)
}

func eventEnv(e *Event) []string {
	return []string{
		"TODOTXT_EVENT_ID=" + e.ID,
		"TODOTXT_EVENT_TYPE=" + string(e.Type),
		"TODOTXT_EVENT_DOCUMENT=" + e.Document,
		"TODOTXT_EVENT_LINE=" + strconv.Itoa(e.Line),
		"TODOTXT_EVENT_TASK=" + e.Task,
	}
}

// HookRunner runs hooks for the events on a bus.
type HookRunner struct {
	hooks   []*Hook
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

type HookOption func(*HookRunner)

func WithHookTimeout(d time.Duration) HookOption {
	return func(r *HookRunner) {
		r.timeout = d
	}
}

func WithHookOutput(stdout, stderr io.Writer) HookOption {
	return func(r *HookRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

func NewHookRunner(hooks []*Hook, opts ...HookOption) *HookRunner {
	r := &HookRunner{
		hooks:   hooks,
		timeout: DefaultHookTimeout,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs every hook matching e in order. A failing hook is logged
// and does not stop the others.
func (r *HookRunner) Execute(ctx context.Context, e *Event) {
	for _, h := range r.hooks {
		if !h.Matches(e) {
			continue
		}
		if err := r.run(ctx, h, e); err != nil {
			slog.ErrorContext(ctx, "hook failed", "command", h.Command, "event_type", e.Type, "error", err)
		}
	}
}

func (r *HookRunner) run(ctx context.Context, h *Hook, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	env := append(os.Environ(), eventEnv(e)...)
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, r.stdout, r.stderr),
	)
	if err != nil {
		return err
	}
	return runner.Run(ctx, h.prog)
}

// Run executes hooks for every event published on bus until ctx is done.
func (r *HookRunner) Run(ctx context.Context, bus *Bus) error {
	return bus.Listen(ctx, 64, r.Execute)
}
