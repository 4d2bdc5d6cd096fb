package document

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kazz187/todotxt/pkg/todotxt"
)

var (
	ErrInvalidLine    = errors.New("invalid todo format")
	ErrLineOutOfRange = errors.New("line out of range")
)

// Document is a todo file held as lines, the way an editor buffer holds it.
// Line numbers are 0-based.
type Document struct {
	Name  string
	Lines []string
}

// New splits text into lines. CRLF endings are accepted and a final newline
// does not produce an empty last line.
func New(name, text string) *Document {
	d := &Document{Name: name}
	if text == "" {
		return d
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	d.Lines = strings.Split(text, "\n")
	return d
}

// Text joins the lines with a trailing newline.
func (d *Document) Text() string {
	if len(d.Lines) == 0 {
		return ""
	}
	return strings.Join(d.Lines, "\n") + "\n"
}

func (d *Document) Clone() *Document {
	return &Document{Name: d.Name, Lines: slices.Clone(d.Lines)}
}

func (d *Document) Line(i int) (string, error) {
	if i < 0 || i >= len(d.Lines) {
		return "", fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, i, len(d.Lines))
	}
	return d.Lines[i], nil
}

// Tasks parses every line and skips the ones that are not valid tasks.
func (d *Document) Tasks(p *todotxt.Parser) []*todotxt.Task {
	var out []*todotxt.Task
	for _, l := range d.Lines {
		if t, ok := p.ParseLine(l); ok {
			out = append(out, t)
		}
	}
	return out
}

// ParseTask parses line i, failing with ErrInvalidLine.
func (d *Document) ParseTask(p *todotxt.Parser, i int) (*todotxt.Task, error) {
	l, err := d.Line(i)
	if err != nil {
		return nil, err
	}
	t, err := p.Parse(l)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, i, err)
	}
	return t, nil
}
