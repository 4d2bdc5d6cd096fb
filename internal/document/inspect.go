package document

import "github.com/kazz187/todotxt/pkg/todotxt"

// Inspection is the lexer and parser view of a single line.
type Inspection struct {
	Line      string          `json:"line"`
	Tokens    []todotxt.Token `json:"tokens"`
	Task      *todotxt.Task   `json:"task,omitempty"`
	Canonical string          `json:"canonical,omitempty"`
	Valid     bool            `json:"valid"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Inspect tokenizes and parses line, recording where it failed.
func Inspect(p *todotxt.Parser, line string) Inspection {
	in := Inspection{Line: line}
	tokens, err := todotxt.Tokenize(line)
	if err != nil {
		in.ErrorKind = todotxt.ErrorKind(err)
		in.Error = err.Error()
		return in
	}
	in.Tokens = tokens
	t, err := p.Parse(line)
	if err != nil {
		in.ErrorKind = todotxt.ErrorKind(err)
		in.Error = err.Error()
		return in
	}
	in.Task = t
	in.Canonical = t.String()
	in.Valid = true
	return in
}
