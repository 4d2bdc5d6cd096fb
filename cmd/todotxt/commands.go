package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/internal/export"
	"github.com/kazz187/todotxt/internal/server"
	"github.com/kazz187/todotxt/internal/watcher"
	"github.com/kazz187/todotxt/pkg/panicerr"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

var errInvalidLines = errors.New("invalid todo.txt lines found")

func (a *app) lex(line string) error {
	tokens, err := todotxt.Tokenize(line)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Fprintln(a.out, tok)
	}
	return nil
}

func (a *app) parse(line string, asJSON bool) error {
	in := document.Inspect(a.service.Parser(), line)
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	}
	if !in.Valid {
		return fmt.Errorf("%s error: %s", in.ErrorKind, in.Error)
	}
	fmt.Fprintln(a.out, colorize(in.Task))
	return nil
}

// format prints each line of r in canonical form. Lines that do not parse
// are printed unchanged.
func (a *app) format(r io.Reader) error {
	p := a.service.Parser()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if t, ok := p.ParseLine(line); ok {
			line = t.String()
		}
		fmt.Fprintln(a.out, line)
	}
	return scanner.Err()
}

type lintResult struct {
	path     string
	problems []string
}

// lint checks files concurrently and prints one problem per invalid line
// in path:line: form.
func (a *app) lint(ctx context.Context, paths []string) error {
	p := pool.NewWithResults[lintResult]().WithContext(ctx).WithMaxGoroutines(8)
	for _, path := range paths {
		p.Go(func(ctx context.Context) (lintResult, error) {
			return panicerr.SafeResult(func() (lintResult, error) {
				return a.lintFile(path)
			})()
		})
	}
	results, err := p.Wait()
	if err != nil {
		return err
	}
	slices.SortFunc(results, func(x, y lintResult) int { return strings.Compare(x.path, y.path) })
	var invalid int
	for _, res := range results {
		for _, problem := range res.problems {
			fmt.Fprintln(a.out, problem)
		}
		invalid += len(res.problems)
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d", errInvalidLines, invalid)
	}
	return nil
}

func (a *app) lintFile(path string) (lintResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return lintResult{}, err
	}
	doc := document.New(path, string(raw))
	res := lintResult{path: path}
	for i, line := range doc.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := a.service.Parser().Parse(line); err != nil {
			res.problems = append(res.problems, fmt.Sprintf("%s:%d: %s error: %v", path, i+1, todotxt.ErrorKind(err), err))
		}
	}
	return res, nil
}

func (a *app) list(ctx context.Context, criteria []string, strict bool) error {
	doc, err := a.docs.Get(ctx, a.doc)
	if err != nil {
		return err
	}
	tasks, err := doc.Search(a.service.Parser(), criteria, strict || a.service.StrictSearch())
	if err != nil {
		return err
	}
	for _, t := range tasks {
		fmt.Fprintln(a.out, colorize(t))
	}
	return nil
}

func (a *app) sort(ctx context.Context, dryRun bool) error {
	res, err := a.docs.Sort(ctx, a.doc, dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprint(a.out, colorizeDiff(res.Diff))
		return nil
	}
	if !res.Changed {
		slog.InfoContext(ctx, "already sorted", "document", a.doc)
	}
	return nil
}

func (a *app) add(ctx context.Context, words []string) error {
	res, err := a.docs.Append(ctx, a.doc, strings.Join(words, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d %s\n", res.Cursor+1, colorize(res.Task))
	return nil
}

func (a *app) toggle(ctx context.Context, line int) error {
	res, err := a.docs.Toggle(ctx, a.doc, line-1)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, colorize(res.Task))
	return nil
}

func (a *app) priority(ctx context.Context, direction string, line int) error {
	dir, err := document.ParseDirection(direction)
	if err != nil {
		return err
	}
	res, err := a.docs.ShiftPriority(ctx, a.doc, line-1, dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, colorize(res.Task))
	return nil
}

func (a *app) export(ctx context.Context, format string, criteria []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	tasks, err := a.docs.Search(ctx, a.doc, criteria)
	if err != nil {
		return err
	}
	return export.Write(a.out, f, tasks)
}

// sortOnChange is the watcher handler: it sorts the document after an
// outside edit when sorting on write is enabled.
func (a *app) sortOnChange(ctx context.Context, path string) error {
	if !a.env.SortOnWrite {
		a.bus.PublishNew(eventbus.DocumentChanged, a.doc, -1, "")
		return nil
	}
	res, err := a.service.Sort(ctx, a.doc, false)
	if err != nil {
		return err
	}
	if res.Changed {
		slog.InfoContext(ctx, "sorted after change", "path", path)
	}
	return nil
}

func (a *app) newWatcher() (*watcher.Watcher, error) {
	path, err := a.localPath()
	if err != nil {
		return nil, err
	}
	return watcher.New(path, a.sortOnChange), nil
}

func (a *app) watch(ctx context.Context) error {
	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	consumers, err := a.eventConsumers()
	if err != nil {
		return err
	}
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.SafeContext(w.Run))
	for _, run := range consumers {
		p.Go(panicerr.SafeContext(run))
	}
	return p.Wait()
}

// eventConsumers returns the event journal and hook loops that the
// environment enables.
func (a *app) eventConsumers() ([]func(context.Context) error, error) {
	var consumers []func(context.Context) error
	if a.env.EventLogDir != "" {
		j := eventbus.NewJournal(a.store, a.env.EventLogDir)
		consumers = append(consumers, func(ctx context.Context) error {
			return j.Run(ctx, a.bus)
		})
	}
	hooks, err := a.env.Hooks()
	if err != nil {
		return nil, err
	}
	if len(hooks) > 0 {
		r := eventbus.NewHookRunner(hooks, eventbus.WithHookTimeout(a.env.HookTimeout))
		consumers = append(consumers, func(ctx context.Context) error {
			return r.Run(ctx, a.bus)
		})
	}
	return consumers, nil
}

// serve runs the HTTP API, and the watcher when requested, until ctx is
// cancelled or one of them fails.
func (a *app) serve(ctx context.Context, watch bool) error {
	srv := server.NewServer(&a.env.BaseEnv, a.service, a.bus)
	consumers, err := a.eventConsumers()
	if err != nil {
		return err
	}
	var w *watcher.Watcher
	if watch {
		if w, err = a.newWatcher(); err != nil {
			return err
		}
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}))
	if w != nil {
		p.Go(panicerr.SafeContext(w.Run))
	}
	for _, run := range consumers {
		p.Go(panicerr.SafeContext(run))
	}
	return p.Wait()
}
