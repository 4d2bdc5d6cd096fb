// Package client talks to a running todotxt server. DocumentClient offers
// the same document commands as document.Service, so callers can work on a
// remote document the way they work on a local one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

type DocumentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	parser     *todotxt.Parser
}

type Option func(*DocumentClient)

func WithAPIKey(key string) Option {
	return func(c *DocumentClient) {
		c.apiKey = key
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *DocumentClient) {
		c.httpClient = hc
	}
}

// NewDocumentClient returns a client for the server at baseURL. parser
// decodes the task lines the server returns.
func NewDocumentClient(baseURL string, parser *todotxt.Parser, opts ...Option) *DocumentClient {
	c := &DocumentClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		parser:     parser,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type documentBody struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

func (b documentBody) document() *document.Document {
	return &document.Document{Name: b.Name, Lines: b.Lines}
}

type lineResultBody struct {
	documentBody
	Cursor int           `json:"cursor"`
	Task   *todotxt.Task `json:"task"`
}

func (b lineResultBody) result() *document.LineResult {
	return &document.LineResult{Document: b.document(), Cursor: b.Cursor, Task: b.Task}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func documentPath(name string, elems ...string) string {
	return "/api/documents/" + strings.Join(append([]string{url.PathEscape(name)}, elems...), "/")
}

// do sends a JSON request and decodes the response into out. Error
// responses come back as *cerr.Error with the server's code.
func (c *DocumentClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "failed to reach server", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorBody
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return cerr.NewError(cerr.Unknown, resp.Status, err)
		}
		return cerr.NewError(cerr.ParseCode(e.Code), e.Message, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *DocumentClient) Get(ctx context.Context, name string) (*document.Document, error) {
	var out documentBody
	if err := c.do(ctx, http.MethodGet, documentPath(name), nil, &out); err != nil {
		return nil, err
	}
	return out.document(), nil
}

func (c *DocumentClient) List(ctx context.Context) ([]string, error) {
	var out struct {
		Documents []string `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *DocumentClient) Sort(ctx context.Context, name string, dryRun bool) (*document.SortResult, error) {
	var out struct {
		documentBody
		Diff    string `json:"diff"`
		Changed bool   `json:"changed"`
	}
	path := documentPath(name, "sort") + "?dry_run=" + strconv.FormatBool(dryRun)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &document.SortResult{Document: out.document(), Diff: out.Diff, Changed: out.Changed}, nil
}

func (c *DocumentClient) Toggle(ctx context.Context, name string, line int) (*document.LineResult, error) {
	var out lineResultBody
	if err := c.do(ctx, http.MethodPost, documentPath(name, "lines", strconv.Itoa(line), "toggle"), nil, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (c *DocumentClient) ShiftPriority(ctx context.Context, name string, line int, dir document.Direction) (*document.LineResult, error) {
	var out lineResultBody
	path := documentPath(name, "lines", strconv.Itoa(line), "priority", dir.String())
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (c *DocumentClient) Append(ctx context.Context, name, text string) (*document.LineResult, error) {
	var out lineResultBody
	if err := c.do(ctx, http.MethodPost, documentPath(name, "lines"), map[string]string{"line": text}, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Search returns the matching tasks, parsed from the canonical lines the
// server sends.
func (c *DocumentClient) Search(ctx context.Context, name string, criteria []string) ([]*todotxt.Task, error) {
	q := url.Values{"q": criteria}
	var out struct {
		Lines []string `json:"lines"`
	}
	if err := c.do(ctx, http.MethodGet, documentPath(name, "search")+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	tasks := make([]*todotxt.Task, 0, len(out.Lines))
	for _, line := range out.Lines {
		t, err := c.parser.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("server returned an invalid line %q: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Template returns the server's template line for a new task.
func (c *DocumentClient) Template(ctx context.Context) (string, error) {
	var out struct {
		Line string `json:"line"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/lines/template", nil, &out); err != nil {
		return "", err
	}
	return out.Line, nil
}
