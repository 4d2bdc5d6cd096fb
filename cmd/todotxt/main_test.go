package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/todotxt/internal/config"
	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/internal/document/repositoryimpl"
	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/storage"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

func init() {
	color.NoColor = true
}

func newTestApp(t *testing.T, dir string) (*app, *bytes.Buffer) {
	t.Helper()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	bus := eventbus.New()
	parser := todotxt.NewParser(todotxt.WithClock(todotxt.FixedClock(todotxt.NewDate(2026, time.October, 19))))
	var out bytes.Buffer
	env := &config.Env{
		StorageEnv: config.StorageEnv{Type: "local", BaseDir: dir},
		TodoEnv:    config.TodoEnv{File: "todo.txt", SortOnWrite: true},
	}
	service := document.NewService(repositoryimpl.NewTextRepository(s), parser, bus)
	return &app{
		env:     env,
		out:     &out,
		doc:     "todo.txt",
		bus:     bus,
		service: service,
		docs:    service,
	}, &out
}

func TestColorize(t *testing.T) {
	p := todotxt.NewParser()
	task, err := p.Parse("(A) 2026-10-01 call mom +family @phone due:2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, task.String(), colorize(task))

	done, err := p.Parse("x 2026-10-19 2026-10-01 call mom")
	require.NoError(t, err)
	assert.Equal(t, done.String(), colorize(done))
}

func TestFormat(t *testing.T) {
	a, out := newTestApp(t, t.TempDir())
	in := "call mom   +family (A)\nnot a @\n(B)  buy milk\n"
	require.NoError(t, a.format(strings.NewReader(in)))
	// "(A)" after the description is not a tag, so the first line is kept.
	assert.Equal(t, "call mom   +family (A)\nnot a @\n(B) buy milk\n", out.String())
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(good, []byte("(A) call mom\n\nbuy milk\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("(A) call mom\nx 2026-02-30 paid\n(B)\n"), 0o644))

	a, out := newTestApp(t, dir)
	err := a.lint(context.Background(), []string{good, bad})
	require.ErrorIs(t, err, errInvalidLines)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], bad+":2: date error"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], bad+":3: parse error"), lines[1])

	out.Reset()
	require.NoError(t, a.lint(context.Background(), []string{good}))
	assert.Empty(t, out.String())
}

func TestDocumentCommands(t *testing.T) {
	dir := t.TempDir()
	a, out := newTestApp(t, dir)
	ctx := context.Background()

	require.NoError(t, a.add(ctx, []string{"buy", "milk", "@store"}))
	require.NoError(t, a.add(ctx, []string{"(A)", "call", "mom"}))
	assert.Equal(t, "1 buy milk @store\n1 (A) call mom\n", out.String())

	out.Reset()
	require.NoError(t, a.priority(ctx, "up", 2))
	assert.Equal(t, "(A) buy milk @store\n", out.String())

	out.Reset()
	require.NoError(t, a.list(ctx, []string{"@store"}, false))
	assert.Equal(t, "(A) buy milk @store\n", out.String())

	out.Reset()
	require.NoError(t, a.toggle(ctx, 1))
	assert.Equal(t, "x (A) 2026-10-19 2026-10-19 buy milk @store\n", out.String())

	raw, err := os.ReadFile(filepath.Join(dir, "todo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "(A) call mom\nx (A) 2026-10-19 2026-10-19 buy milk @store\n", string(raw))

	assert.Error(t, a.toggle(ctx, 9))
}

func TestSortOnChange(t *testing.T) {
	dir := t.TempDir()
	a, _ := newTestApp(t, dir)
	path := filepath.Join(dir, "todo.txt")
	require.NoError(t, os.WriteFile(path, []byte("buy milk\n(A) call mom\n"), 0o644))

	_, events := a.bus.Subscribe(4)
	require.NoError(t, a.sortOnChange(context.Background(), path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(A) call mom\nbuy milk\n", string(raw))
	assert.Equal(t, eventbus.DocumentSorted, (<-events).Type)

	a.env.SortOnWrite = false
	require.NoError(t, os.WriteFile(path, []byte("b\na\n"), 0o644))
	require.NoError(t, a.sortOnChange(context.Background(), path))
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b\na\n", string(raw))
	assert.Equal(t, eventbus.DocumentChanged, (<-events).Type)
}

func TestEventConsumers(t *testing.T) {
	a, _ := newTestApp(t, t.TempDir())
	consumers, err := a.eventConsumers()
	require.NoError(t, err)
	assert.Empty(t, consumers)

	a.env.EventLogDir = ".events"
	a.env.Hook = "true"
	consumers, err = a.eventConsumers()
	require.NoError(t, err)
	assert.Len(t, consumers, 2)
}
