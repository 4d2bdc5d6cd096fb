package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

type lineRequest struct {
	Line string `json:"line"`
}

type lineResponse struct {
	Line string        `json:"line"`
	Task *todotxt.Task `json:"task,omitempty"`
}

type linesRequest struct {
	Lines    []string `json:"lines"`
	Criteria []string `json:"criteria,omitempty"`
}

type linesResponse struct {
	Lines []string `json:"lines"`
}

// decode reads a JSON body into v and reports a bad request on failure.
func decode(r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "invalid request body", err)
		return false
	}
	return true
}

// invalidLine reports a line that failed to tokenize or parse, with the
// failure kind as the detail rule id.
func invalidLine(err error) *cerr.Error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid todo format", err)
	e.AddDetailMessageWithCode(err.Error(), todotxt.ErrorKind(err))
	return e
}

func (s *Server) tokenizeLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decode(r, &req) {
		return
	}
	tokens, err := todotxt.Tokenize(req.Line)
	if err != nil {
		cerr.SetJSONError(r.Context(), invalidLine(err))
		return
	}
	if tokens == nil {
		tokens = []todotxt.Token{}
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"tokens": tokens})
}

// parseLine never fails on bad input: an unparseable line is reported as
// valid=false with the failure kind.
func (s *Server) parseLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decode(r, &req) {
		return
	}
	cerr.SetJSONResponse(r.Context(), document.Inspect(s.service.Parser(), req.Line))
}

func (s *Server) formatTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task *todotxt.Task `json:"task"`
	}
	if !decode(r, &req) {
		return
	}
	if req.Task == nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "task is required", nil)
		return
	}
	cerr.SetJSONResponse(r.Context(), lineResponse{Line: req.Task.String(), Task: req.Task})
}

func (s *Server) parseRequestLine(w http.ResponseWriter, r *http.Request, req any, line func() string) (*todotxt.Task, bool) {
	if !decode(r, req) {
		return nil, false
	}
	t, err := s.service.Parser().Parse(line())
	if err != nil {
		cerr.SetJSONError(r.Context(), invalidLine(err))
		return nil, false
	}
	return t, true
}

func (s *Server) shiftLinePriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line      string `json:"line"`
		Direction string `json:"direction"`
	}
	t, ok := s.parseRequestLine(w, r, &req, func() string { return req.Line })
	if !ok {
		return
	}
	dir, err := document.ParseDirection(req.Direction)
	if err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "direction must be up or down", err)
		return
	}
	if dir == document.Down {
		err = t.DecreasePriority()
	} else {
		err = t.IncreasePriority()
	}
	if errors.Is(err, todotxt.ErrPriorityOutOfScale) {
		cerr.SetNewJSONError(r.Context(), cerr.FailedPrecondition, "priority is outside the A-C scale", err)
		return
	}
	cerr.SetJSONResponse(r.Context(), lineResponse{Line: t.String(), Task: t})
}

func (s *Server) toggleLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	t, ok := s.parseRequestLine(w, r, &req, func() string { return req.Line })
	if !ok {
		return
	}
	t.ToggleDone(s.service.Parser().Today())
	cerr.SetJSONResponse(r.Context(), lineResponse{Line: t.String(), Task: t})
}

func (s *Server) sortLines(w http.ResponseWriter, r *http.Request) {
	var req linesRequest
	if !decode(r, &req) {
		return
	}
	doc := &document.Document{Lines: req.Lines}
	doc.Sort(s.service.Parser(), 0)
	if doc.Lines == nil {
		doc.Lines = []string{}
	}
	cerr.SetJSONResponse(r.Context(), linesResponse{Lines: doc.Lines})
}

func (s *Server) searchLines(w http.ResponseWriter, r *http.Request) {
	var req linesRequest
	if !decode(r, &req) {
		return
	}
	doc := &document.Document{Lines: req.Lines}
	tasks, err := doc.Search(s.service.Parser(), req.Criteria, s.service.StrictSearch())
	if err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "unrecognized search criterion", err)
		return
	}
	cerr.SetJSONResponse(r.Context(), linesResponse{Lines: taskLines(tasks)})
}

func (s *Server) template(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), lineResponse{Line: s.service.Template()})
}

func taskLines(tasks []*todotxt.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.String()
	}
	return out
}
