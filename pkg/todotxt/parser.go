package todotxt

import "strings"

// DateOrder selects how the two header dates of a line are assigned.
type DateOrder int

const (
	// DateOrderCompletionFirst reads "x 2024-03-02 2024-03-01" as completed
	// on the 2nd and created on the 1st, the order String writes them in.
	DateOrderCompletionFirst DateOrder = iota
	// DateOrderCreationFirst reads the first date as the creation date and
	// the second as the completion date.
	DateOrderCreationFirst
)

type config struct {
	clock     Clock
	dateOrder DateOrder
}

// Option configures a Parser.
type Option func(*config)

// WithClock sets the clock used to stamp completion dates on done tasks
// that carry only a creation date.
func WithClock(c Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithDateOrder sets the assignment of a two-date header.
func WithDateOrder(o DateOrder) Option {
	return func(cfg *config) {
		cfg.dateOrder = o
	}
}

func newConfig(opts []Option) config {
	cfg := config{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Parser turns lines into tasks.
type Parser struct {
	cfg config
}

func NewParser(opts ...Option) *Parser {
	return &Parser{cfg: newConfig(opts)}
}

var defaultParser = NewParser()

// Parse parses line with the default parser.
func Parse(line string) (*Task, error) {
	return defaultParser.Parse(line)
}

// ParseLine parses line with the default parser and reports only whether
// it succeeded.
func ParseLine(line string) (*Task, bool) {
	return defaultParser.ParseLine(line)
}

// Today returns the parser clock's date.
func (p *Parser) Today() Date {
	return p.cfg.clock.Today()
}

// Parse tokenizes and parses line. A done task with a creation date but no
// completion date gets today's date as its completion date.
//
// A single header date is always the creation date. With two dates the
// default DateOrderCompletionFirst reads the first as the completion date,
// matching String; the classic grammar reads it as the creation date, which
// WithDateOrder(DateOrderCreationFirst) restores. Either way a record with
// only a completion date comes back with both dates set.
//
// Errors match ErrTokenize, ErrDate or ErrParse.
func (p *Parser) Parse(line string) (*Task, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	t, err := parseTokens(tokens, p.cfg.dateOrder)
	if err != nil {
		return nil, err
	}
	if t.Done && t.CreationDate != nil && t.CompletionDate == nil {
		t.CompletionDate = p.cfg.clock.Today().Ptr()
	}
	return t, nil
}

// ParseLine is Parse with every failure collapsed to false. It never
// returns a partial task.
func (p *Parser) ParseLine(line string) (*Task, bool) {
	t, err := p.Parse(line)
	if err != nil {
		return nil, false
	}
	return t, true
}

// ParseTokens applies the grammar to tokens without filling in any date.
// Only WithDateOrder is consulted.
//
//	todo        := [header] description [tags]
//	header      := DONE [PRIORITY] [dates] | PRIORITY [dates] | dates
//	dates       := DATE [DATE]
//	description := WORD+
//	tags        := (PROJECT_TAG | CONTEXT_TAG | METADATA)+
func ParseTokens(tokens []Token, opts ...Option) (*Task, error) {
	return parseTokens(tokens, newConfig(opts).dateOrder)
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() *Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) accept(k Kind) (*Token, bool) {
	tok := p.peek()
	if tok == nil || tok.Kind != k {
		return nil, false
	}
	p.pos++
	return tok, true
}

func (p *parser) fail(reason string) error {
	tok := p.peek()
	if tok == nil {
		return &ParseError{Pos: -1, Reason: reason}
	}
	t := *tok
	return &ParseError{Pos: t.Pos, Token: &t, Reason: reason}
}

func parseTokens(tokens []Token, order DateOrder) (*Task, error) {
	p := &parser{tokens: tokens}
	t := &Task{}

	_, t.Done = p.accept(KindDone)
	if tok, ok := p.accept(KindPriority); ok {
		t.Priority = tok.Priority
	}
	if first, ok := p.accept(KindDate); ok {
		if second, ok := p.accept(KindDate); ok {
			switch order {
			case DateOrderCreationFirst:
				t.CreationDate, t.CompletionDate = first.Date.Ptr(), second.Date.Ptr()
			default:
				t.CompletionDate, t.CreationDate = first.Date.Ptr(), second.Date.Ptr()
			}
		} else {
			t.CreationDate = first.Date.Ptr()
		}
	}

	var words []string
	for {
		tok, ok := p.accept(KindWord)
		if !ok {
			break
		}
		words = append(words, tok.Text)
	}
	if len(words) == 0 {
		return nil, p.fail("missing description")
	}
	t.Description = strings.Join(words, " ")

	for tok := p.peek(); tok != nil; tok = p.peek() {
		switch tok.Kind {
		case KindProject:
			t.ProjectTags = append(t.ProjectTags, tok.Tag)
		case KindContext:
			t.ContextTags = append(t.ContextTags, tok.Tag)
		case KindMetadata:
			t.Metadata.Set(tok.Key, tok.Value)
		default:
			return nil, p.fail("expected tag")
		}
		p.pos++
	}
	return t, nil
}
