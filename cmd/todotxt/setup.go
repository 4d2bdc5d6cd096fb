package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kazz187/todotxt/internal/client"
	"github.com/kazz187/todotxt/internal/config"
	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/internal/document/repositoryimpl"
	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/clog"
	"github.com/kazz187/todotxt/pkg/storage"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

// documents is the set of document commands, served either by the local
// document.Service or by a remote server through client.DocumentClient.
type documents interface {
	Get(ctx context.Context, name string) (*document.Document, error)
	Sort(ctx context.Context, name string, dryRun bool) (*document.SortResult, error)
	Toggle(ctx context.Context, name string, line int) (*document.LineResult, error)
	ShiftPriority(ctx context.Context, name string, line int, dir document.Direction) (*document.LineResult, error)
	Append(ctx context.Context, name, text string) (*document.LineResult, error)
	Search(ctx context.Context, name string, criteria []string) ([]*todotxt.Task, error)
}

type app struct {
	env     *config.Env
	out     io.Writer
	doc     string
	bus     *eventbus.Bus
	service *document.Service
	docs    documents
	store   storage.Storage
}

func newApp() (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	store, err := newStorage(env)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	parser := todotxt.NewParser(env.ParserOptions(todotxt.SystemClock{})...)
	service := document.NewService(
		repositoryimpl.NewTextRepository(store),
		parser,
		bus,
		document.WithStrictSearch(env.StrictSearch),
		document.WithTemplatePriority(env.Priority()),
	)

	doc := env.File
	if *file != "" {
		doc = *file
	}
	a := &app{env: env, out: os.Stdout, doc: doc, bus: bus, service: service, docs: service, store: store}
	if *remote != nil {
		a.docs = client.NewDocumentClient((*remote).String(), parser, client.WithAPIKey(env.APIKey))
	}
	return a, nil
}

func newStorage(env *config.Env) (storage.Storage, error) {
	switch env.StorageEnv.Type {
	case "s3":
		s, err := storage.NewS3Storage(context.Background(), env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return s, nil
	default:
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return s, nil
	}
}

// localPath is the document's path on disk, for commands that watch it.
func (a *app) localPath() (string, error) {
	if a.env.StorageEnv.Type != "local" {
		return "", fmt.Errorf("watching requires local storage, not %q", a.env.StorageEnv.Type)
	}
	return filepath.Join(a.env.BaseDir, a.doc), nil
}
