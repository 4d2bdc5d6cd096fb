package document

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/clog"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

// Service applies editor commands to stored documents. Each command loads
// the document, changes it and saves it back while holding a lock, so
// concurrent commands do not lose each other's edits.
type Service struct {
	repo             Repository
	parser           *todotxt.Parser
	bus              *eventbus.Bus
	strictSearch     bool
	templatePriority todotxt.Priority
	mu               sync.Mutex
}

type ServiceOption func(*Service)

func WithStrictSearch(strict bool) ServiceOption {
	return func(s *Service) {
		s.strictSearch = strict
	}
}

func WithTemplatePriority(p todotxt.Priority) ServiceOption {
	return func(s *Service) {
		s.templatePriority = p
	}
}

func NewService(repo Repository, parser *todotxt.Parser, bus *eventbus.Bus, opts ...ServiceOption) *Service {
	s := &Service{
		repo:             repo,
		parser:           parser,
		bus:              bus,
		templatePriority: 'C',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Parser() *todotxt.Parser {
	return s.parser
}

func (s *Service) StrictSearch() bool {
	return s.strictSearch
}

// LineResult is the outcome of a command on one line.
type LineResult struct {
	Document *Document
	Cursor   int
	Task     *todotxt.Task
}

// SortResult is the outcome of sorting a document.
type SortResult struct {
	Document *Document
	Diff     string
	Changed  bool
}

func (s *Service) Get(ctx context.Context, name string) (*Document, error) {
	clog.AddAttribute(ctx, "document", name)
	return s.repo.Get(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Save stores doc sorted, as the editor does on write.
func (s *Service) Save(ctx context.Context, doc *Document) (*SortResult, error) {
	clog.AddAttribute(ctx, "document", doc.Name)
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := doc.Clone()
	_, changed := sorted.Sort(s.parser, 0)
	if err := s.repo.Save(ctx, sorted); err != nil {
		return nil, err
	}
	s.bus.PublishNew(eventbus.DocumentChanged, doc.Name, -1, "")
	return &SortResult{Document: sorted, Changed: changed}, nil
}

// Sort sorts the stored document. With dryRun the result and diff are
// returned without saving. Nothing is written when the order is unchanged.
func (s *Service) Sort(ctx context.Context, name string, dryRun bool) (*SortResult, error) {
	clog.AddAttribute(ctx, "document", name)
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	after := before.Clone()
	_, changed := after.Sort(s.parser, 0)
	diff, err := Diff(before, after)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	res := &SortResult{Document: after, Diff: diff, Changed: changed}
	if dryRun || !changed {
		return res, nil
	}
	if err := s.repo.Save(ctx, after); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "document sorted", "lines", len(after.Lines))
	s.bus.PublishNew(eventbus.DocumentSorted, name, -1, "")
	return res, nil
}

func (s *Service) Toggle(ctx context.Context, name string, line int) (*LineResult, error) {
	return s.mutateLine(ctx, name, line, eventbus.TaskToggled, func(doc *Document) (int, *todotxt.Task, error) {
		return doc.Toggle(s.parser, line, s.parser.Today())
	})
}

func (s *Service) ShiftPriority(ctx context.Context, name string, line int, dir Direction) (*LineResult, error) {
	return s.mutateLine(ctx, name, line, eventbus.PriorityChanged, func(doc *Document) (int, *todotxt.Task, error) {
		return doc.ShiftPriority(s.parser, line, dir)
	})
}

// Append adds a task line to the document, creating the document when it
// does not exist, and sorts it.
func (s *Service) Append(ctx context.Context, name, text string) (*LineResult, error) {
	clog.AddAttribute(ctx, "document", name)
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Get(ctx, name)
	if cerr.IsCode(err, cerr.NotFound) {
		doc, err = New(name, ""), nil
	}
	if err != nil {
		return nil, err
	}
	line, t, err := doc.Append(s.parser, text)
	if err != nil {
		return nil, toCodedError(err)
	}
	cursor, _ := doc.Sort(s.parser, line)
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.bus.PublishNew(eventbus.TaskAdded, name, cursor, t.String())
	return &LineResult{Document: doc, Cursor: cursor, Task: t}, nil
}

// Template returns the template line for a new task dated today.
func (s *Service) Template() string {
	doc := New("", "")
	doc.FillTemplate(0, s.parser.Today(), s.templatePriority)
	return doc.Lines[0]
}

func (s *Service) Search(ctx context.Context, name string, criteria []string) ([]*todotxt.Task, error) {
	doc, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	tasks, err := doc.Search(s.parser, criteria, s.strictSearch)
	if err != nil {
		return nil, toCodedError(err)
	}
	return tasks, nil
}

func (s *Service) mutateLine(ctx context.Context, name string, line int, typ eventbus.EventType, fn func(*Document) (int, *todotxt.Task, error)) (*LineResult, error) {
	clog.AddAttributes(ctx, map[string]any{"document": name, "line": line})
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	cursor, t, err := fn(doc)
	if err != nil {
		return nil, toCodedError(err)
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.bus.PublishNew(typ, name, cursor, t.String())
	return &LineResult{Document: doc, Cursor: cursor, Task: t}, nil
}

// toCodedError maps document and parser errors to status codes.
func toCodedError(err error) error {
	switch {
	case errors.Is(err, ErrLineOutOfRange):
		return cerr.NewError(cerr.OutOfRange, "line out of range", err)
	case errors.Is(err, todotxt.ErrPriorityOutOfScale):
		return cerr.NewError(cerr.FailedPrecondition, "priority is outside the A-C scale", err)
	case errors.Is(err, todotxt.ErrUnrecognizedCriterion):
		return cerr.NewError(cerr.InvalidArgument, "unrecognized search criterion", err)
	case errors.Is(err, ErrInvalidLine):
		e := cerr.NewError(cerr.InvalidArgument, ErrInvalidLine.Error(), err)
		if kind := todotxt.ErrorKind(err); kind != "" {
			e.AddDetailMessageWithCode(err.Error(), kind)
		}
		return e
	default:
		return cerr.NewError(cerr.Internal, "server error", err)
	}
}
