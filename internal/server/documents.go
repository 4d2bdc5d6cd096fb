package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

type documentResponse struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

type sortResponse struct {
	documentResponse
	Diff    string `json:"diff,omitempty"`
	Changed bool   `json:"changed"`
}

type lineResultResponse struct {
	documentResponse
	Cursor int           `json:"cursor"`
	Task   *todotxt.Task `json:"task"`
}

func newDocumentResponse(doc *document.Document) documentResponse {
	lines := doc.Lines
	if lines == nil {
		lines = []string{}
	}
	return documentResponse{Name: doc.Name, Lines: lines}
}

func newLineResultResponse(res *document.LineResult) lineResultResponse {
	return lineResultResponse{
		documentResponse: newDocumentResponse(res.Document),
		Cursor:           res.Cursor,
		Task:             res.Task,
	}
}

// lineParam reads the 0-based {line} URL parameter.
func lineParam(r *http.Request) (int, bool) {
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 0 {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "line must be a non-negative integer", err)
		return 0, false
	}
	return line, true
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.List(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	if names == nil {
		names = []string{}
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"documents": names})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), newDocumentResponse(doc))
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []string `json:"lines"`
	}
	if !decode(r, &req) {
		return
	}
	doc := &document.Document{Name: chi.URLParam(r, "name"), Lines: req.Lines}
	res, err := s.service.Save(r.Context(), doc)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), sortResponse{
		documentResponse: newDocumentResponse(res.Document),
		Changed:          res.Changed,
	})
}

func (s *Server) sortDocument(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	res, err := s.service.Sort(r.Context(), chi.URLParam(r, "name"), dryRun)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), sortResponse{
		documentResponse: newDocumentResponse(res.Document),
		Diff:             res.Diff,
		Changed:          res.Changed,
	})
}

// searchDocument takes one criterion per q parameter, e.g.
// ?q=@home&q=+garden&q=due:2026-10-20.
func (s *Server) searchDocument(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.Search(r.Context(), chi.URLParam(r, "name"), r.URL.Query()["q"])
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), linesResponse{Lines: taskLines(tasks)})
}

func (s *Server) appendLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decode(r, &req) {
		return
	}
	res, err := s.service.Append(r.Context(), chi.URLParam(r, "name"), req.Line)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponseWithStatus(r.Context(), http.StatusCreated, newLineResultResponse(res))
}

func (s *Server) toggleDocumentLine(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(r)
	if !ok {
		return
	}
	res, err := s.service.Toggle(r.Context(), chi.URLParam(r, "name"), line)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), newLineResultResponse(res))
}

func (s *Server) shiftDocumentLinePriority(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(r)
	if !ok {
		return
	}
	dir, err := document.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "direction must be up or down", err)
		return
	}
	res, err := s.service.ShiftPriority(r.Context(), chi.URLParam(r, "name"), line, dir)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), newLineResultResponse(res))
}
