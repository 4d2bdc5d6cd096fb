package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/todotxt/internal/config"
	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/internal/document/repositoryimpl"
	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/storage"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

var today = todotxt.NewDate(2026, time.October, 19)

type testServer struct {
	server  *Server
	storage storage.Storage
	bus     *eventbus.Bus
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	bus := eventbus.New()
	parser := todotxt.NewParser(todotxt.WithClock(todotxt.FixedClock(today)))
	service := document.NewService(repositoryimpl.NewTextRepository(s), parser, bus)
	env := &config.BaseEnv{HTTPHost: "127.0.0.1", HTTPPort: "0", APIKey: apiKey}
	return &testServer{server: NewServer(env, service, bus), storage: s, bus: bus}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) put(t *testing.T, name, text string) {
	t.Helper()
	require.NoError(t, ts.storage.Write(context.Background(), name, []byte(text)))
}

func (ts *testServer) read(t *testing.T, name string) string {
	t.Helper()
	raw, err := ts.storage.Read(context.Background(), name)
	require.NoError(t, err)
	return string(raw)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Message string `json:"message"`
		RuleID  string `json:"ruleId"`
	} `json:"details"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "secret")
	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKey(t *testing.T) {
	ts := newTestServer(t, "secret")

	rec := ts.do(t, http.MethodGet, "/api/lines/template", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/lines/template", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/lines/template", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenizeLine(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/lines/tokenize", `{"line":"(A) call mom +family"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[struct {
		Tokens []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"tokens"`
	}](t, rec)
	require.Len(t, body.Tokens, 4)
	assert.Equal(t, "PRIORITY", body.Tokens[0].Kind)
	assert.Equal(t, "WORD", body.Tokens[1].Kind)
	assert.Equal(t, "PROJECT_TAG", body.Tokens[3].Kind)
	assert.Equal(t, "+family", body.Tokens[3].Text)

	rec = ts.do(t, http.MethodPost, "/api/lines/tokenize", `{"line":"buy @"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeBody[errorBody](t, rec)
	assert.Equal(t, "invalid_argument", e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "tokenize", e.Details[0].RuleID)

	rec = ts.do(t, http.MethodPost, "/api/lines/tokenize", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseLine(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/lines/parse", `{"line":"x 2026-10-01 pay rent due:2026-10-31"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	in := decodeBody[document.Inspection](t, rec)
	assert.True(t, in.Valid)
	require.NotNil(t, in.Task)
	assert.True(t, in.Task.Done)
	assert.Equal(t, "x 2026-10-19 2026-10-01 pay rent due:2026-10-31", in.Canonical)

	rec = ts.do(t, http.MethodPost, "/api/lines/parse", `{"line":"(A)"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	in = decodeBody[document.Inspection](t, rec)
	assert.False(t, in.Valid)
	assert.Equal(t, "parse", in.ErrorKind)
}

func TestFormatTask(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/lines/format",
		`{"task":{"priority":"B","description":"call mom","project_tags":["family"],"metadata":[{"key":"due","value":"2026-10-20"}]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[lineResponse](t, rec)
	assert.Equal(t, "(B) call mom +family due:2026-10-20", body.Line)

	rec = ts.do(t, http.MethodPost, "/api/lines/format", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShiftLinePriority(t *testing.T) {
	ts := newTestServer(t, "")

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "up", body: `{"line":"(B) call mom","direction":"up"}`, status: http.StatusOK, want: "(A) call mom"},
		{name: "down from none", body: `{"line":"call mom","direction":"down"}`, status: http.StatusOK, want: "(C) call mom"},
		{name: "up at top", body: `{"line":"(A) call mom","direction":"up"}`, status: http.StatusOK, want: "(A) call mom"},
		{name: "out of scale", body: `{"line":"(D) call mom","direction":"up"}`, status: http.StatusPreconditionFailed},
		{name: "bad direction", body: `{"line":"(B) call mom","direction":"left"}`, status: http.StatusBadRequest},
		{name: "invalid line", body: `{"line":"(B)","direction":"up"}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/lines/priority", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.Equal(t, tt.want, decodeBody[lineResponse](t, rec).Line)
			}
		})
	}
}

func TestToggleLine(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/lines/toggle", `{"line":"2026-10-01 call mom"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x 2026-10-19 2026-10-01 call mom", decodeBody[lineResponse](t, rec).Line)

	rec = ts.do(t, http.MethodPost, "/api/lines/toggle", `{"line":"x 2026-10-19 2026-10-01 call mom"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-01 call mom", decodeBody[lineResponse](t, rec).Line)
}

func TestSortAndSearchLines(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/lines/sort", `{"lines":["x done","buy milk @store","(A) call mom","","not a @"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"(A) call mom", "buy milk @store", "x done", "not a @"}, decodeBody[linesResponse](t, rec).Lines)

	rec = ts.do(t, http.MethodPost, "/api/lines/search", `{"lines":["buy milk @store","(A) call mom +family"],"criteria":["+family"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"(A) call mom +family"}, decodeBody[linesResponse](t, rec).Lines)
}

func TestTemplate(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodGet, "/api/lines/template", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "(C) 2026-10-19 ", decodeBody[lineResponse](t, rec).Line)
}

func TestDocuments(t *testing.T) {
	ts := newTestServer(t, "")
	ts.put(t, "todo.txt", "x paid rent\n(B) buy milk @store\n(A) call mom +family\n")

	rec := ts.do(t, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":["todo.txt"]}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/documents/todo.txt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeBody[documentResponse](t, rec)
	assert.Len(t, doc.Lines, 3)

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/sort?dry_run=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sorted := decodeBody[sortResponse](t, rec)
	assert.True(t, sorted.Changed)
	assert.NotEmpty(t, sorted.Diff)
	assert.Equal(t, "x paid rent\n(B) buy milk @store\n(A) call mom +family\n", ts.read(t, "todo.txt"))

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/sort", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "(A) call mom +family\n(B) buy milk @store\nx paid rent\n", ts.read(t, "todo.txt"))

	rec = ts.do(t, http.MethodGet, "/api/documents/todo.txt/search?q=@store", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"(B) buy milk @store"}, decodeBody[linesResponse](t, rec).Lines)

	rec = ts.do(t, http.MethodGet, "/api/documents/missing.txt", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/documents/notes.md", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutDocument(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPut, "/api/documents/todo.txt", `{"lines":["buy milk","(A) call mom"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[sortResponse](t, rec).Changed)
	assert.Equal(t, "(A) call mom\nbuy milk\n", ts.read(t, "todo.txt"))
}

func TestDocumentLineCommands(t *testing.T) {
	ts := newTestServer(t, "")
	ts.put(t, "todo.txt", "(A) call mom\n(B) buy milk\n")

	rec := ts.do(t, http.MethodPost, "/api/documents/todo.txt/lines/1/priority/up", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[lineResultResponse](t, rec)
	assert.Equal(t, "(A) buy milk", res.Task.String())
	assert.Equal(t, 0, res.Cursor)
	assert.Equal(t, "(A) buy milk\n(A) call mom\n", ts.read(t, "todo.txt"))

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/lines/0/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decodeBody[lineResultResponse](t, rec)
	assert.True(t, res.Task.Done)
	assert.Equal(t, 0, res.Cursor)
	assert.Equal(t, "x (A) 2026-10-19 2026-10-19 buy milk", res.Task.String())
	assert.Equal(t, "(A) call mom\nx (A) 2026-10-19 2026-10-19 buy milk\n", ts.read(t, "todo.txt"))

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/lines/9/toggle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "out_of_range", decodeBody[errorBody](t, rec).Code)

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/lines/abc/toggle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/documents/todo.txt/lines/0/priority/sideways", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppendLine(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/documents/new.txt/lines", `{"line":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPost, "/api/documents/new.txt/lines", `{"line":"(A) call mom"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decodeBody[lineResultResponse](t, rec).Cursor)
	assert.Equal(t, "(A) call mom\nbuy milk\n", ts.read(t, "new.txt"))

	rec = ts.do(t, http.MethodPost, "/api/documents/new.txt/lines", `{"line":"(A)"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeBody[errorBody](t, rec)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "parse", e.Details[0].RuleID)
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, "")
	rec := ts.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[errorBody](t, rec).Code)
}

func TestStreamEvents(t *testing.T) {
	ts := newTestServer(t, "")
	srv := httptest.NewServer(ts.server.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?document=todo.txt", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The subscription exists once the headers are flushed.
	ts.bus.PublishNew(eventbus.TaskAdded, "other.txt", 0, "ignored")
	ts.bus.PublishNew(eventbus.TaskAdded, "todo.txt", 0, "(A) call mom")

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		if line, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
			data = line
			break
		}
	}
	require.NotEmpty(t, data)
	var event eventbus.Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, eventbus.TaskAdded, event.Type)
	assert.Equal(t, "(A) call mom", event.Task)
}
