package clog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	ctx := ContextWithSlog(context.Background())
	AddAttribute(ctx, "document", "todo.txt")
	AddAttributes(ctx, map[string]any{"task": map[string]any{"line": 3}})
	AddAttributes(ctx, map[string]any{"task": map[string]any{"done": true}})

	assert.Equal(t, "todo.txt", GetAttribute[string](ctx, "document"))
	assert.Equal(t, 0, GetAttribute[int](ctx, "document"))
	assert.Equal(t, map[string]any{"line": 3, "done": true}, GetAttribute[map[string]any](ctx, "task"))

	err := errors.New("boom")
	AddError(ctx, err)
	assert.Equal(t, err, GetError(ctx))
}

func TestAttributes_WithoutBag(t *testing.T) {
	ctx := context.Background()
	AddAttribute(ctx, "k", "v")
	assert.Nil(t, GetAttributes(ctx))
	assert.Empty(t, GetStack(ctx))
}

func TestTextHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewAttributesHandler(NewTextHandler(buf, WithColor(false), WithLevel(slog.LevelDebug))))
	ctx := ContextWithSlog(context.Background())
	AddAttributes(ctx, map[string]any{"method": "POST", "path": "/api/lines/parse", "lines": 2})
	AddError(ctx, errors.New("bad line"))

	logger.With("document", "todo.txt").InfoContext(ctx, "parsed")

	out := buf.String()
	assert.Contains(t, out, "INFO POST /api/lines/parse todo.txt parsed bad line\n")
	assert.Contains(t, out, "    lines=2\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextHandler_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewTextHandler(buf, WithColor(false), WithLevel(slog.LevelWarn)))
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestTextHandler_Group(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewTextHandler(buf, WithColor(false)))
	logger.WithGroup("watch").Info("changed", "file", "todo.txt")
	assert.Contains(t, buf.String(), "    watch.file=todo.txt\n")
}

func TestStatusToLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, StatusToLevel(http.StatusOK))
	assert.Equal(t, slog.LevelInfo, StatusToLevel(499))
	assert.Equal(t, slog.LevelWarn, StatusToLevel(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, StatusToLevel(http.StatusBadGateway))
}

func TestCodeToLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, CodeToLevel(connect.CodeInvalidArgument))
	assert.Equal(t, slog.LevelError, CodeToLevel(connect.CodeInternal))
}

func TestSlogChiMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(NewAttributesHandler(NewTextHandler(buf, WithColor(false)))))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := chi.NewRouter()
	r.Use(SlogChiMiddleware(WithChiFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health"
	})))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		AddAttribute(r.Context(), "document", "work.txt")
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), "WARN GET /missing 404 work.txt Not Found")
}
