package todotxt

import (
	"errors"
	"fmt"
)

var (
	ErrTokenize              = errors.New("tokenize error")
	ErrParse                 = errors.New("parse error")
	ErrDate                  = errors.New("date error")
	ErrPriorityOutOfScale    = errors.New("priority out of scale")
	ErrUnrecognizedCriterion = errors.New("unrecognized search criterion")
)

// TokenizeError reports a field that matches no token pattern.
type TokenizeError struct {
	Pos  int
	Text string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize: unexpected %q at %d", e.Text, e.Pos)
}

func (e *TokenizeError) Is(target error) bool {
	return target == ErrTokenize
}

// DateError reports a date-shaped field that is not a real calendar date.
type DateError struct {
	Pos  int
	Text string
	Err  error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("date: %q at %d is not a calendar date", e.Text, e.Pos)
}

func (e *DateError) Is(target error) bool {
	return target == ErrDate
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// ParseError reports a token sequence outside the grammar. Token is nil when
// the input ended early.
type ParseError struct {
	Pos    int
	Token  *Token
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return "parse: " + e.Reason
	}
	return fmt.Sprintf("parse: %s: unexpected %s at %d", e.Reason, e.Token, e.Pos)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// PriorityScaleError is returned when a priority outside Scale is asked to
// move.
type PriorityScaleError struct {
	Priority Priority
}

func (e *PriorityScaleError) Error() string {
	return fmt.Sprintf("priority (%s) is outside the scale %s-%s", e.Priority, Scale[0], Scale[len(Scale)-1])
}

func (e *PriorityScaleError) Is(target error) bool {
	return target == ErrPriorityOutOfScale
}

// ErrorKind names the failure class of a line-parsing error: "tokenize",
// "parse" or "date". It returns "" for nil or unrelated errors.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDate):
		return "date"
	case errors.Is(err, ErrTokenize):
		return "tokenize"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return ""
	}
}
