package todotxt

import (
	"regexp"
	"strings"
)

var (
	priorityPattern = regexp.MustCompile(`^\(([A-Z])\)$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	projectPattern  = regexp.MustCompile(`^\+([\p{L}\p{M}\p{N}_-]+)$`)
	contextPattern  = regexp.MustCompile(`^@([\p{L}\p{M}\p{N}_-]+)$`)
	metadataPattern = regexp.MustCompile(`^([\p{L}\p{M}\p{N}_-]+):([\p{L}\p{M}\p{N}_-]+)$`)
)

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Tokenize trims line and splits it into classified tokens. Separators are
// space, tab, CR and LF and never produce tokens.
//
// An "x" is a done marker only as the first of several fields; anywhere else
// it is an ordinary word.
func Tokenize(line string) ([]Token, error) {
	line = strings.TrimSpace(line)
	var tokens []Token
	pos := 0
	for pos < len(line) {
		for pos < len(line) && isSeparator(rune(line[pos])) {
			pos++
		}
		if pos == len(line) {
			break
		}
		end := pos
		for end < len(line) && !isSeparator(rune(line[end])) {
			end++
		}
		// "x" marks done only when it opens the line and more follows.
		doneMarker := len(tokens) == 0 && end < len(line)
		tok, err := classify(line[pos:end], pos, doneMarker)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		pos = end
	}
	return tokens, nil
}

func classify(field string, pos int, doneMarker bool) (Token, error) {
	tok := Token{Text: field, Pos: pos}
	if doneMarker && field == "x" {
		tok.Kind = KindDone
		return tok, nil
	}
	if m := priorityPattern.FindStringSubmatch(field); m != nil {
		tok.Kind = KindPriority
		tok.Priority = Priority(m[1][0])
		return tok, nil
	}
	if datePattern.MatchString(field) {
		d, err := ParseDate(field)
		if err != nil {
			return Token{}, &DateError{Pos: pos, Text: field, Err: err}
		}
		tok.Kind = KindDate
		tok.Date = d
		return tok, nil
	}
	if m := projectPattern.FindStringSubmatch(field); m != nil {
		tok.Kind = KindProject
		tok.Tag = m[1]
		return tok, nil
	}
	if m := contextPattern.FindStringSubmatch(field); m != nil {
		tok.Kind = KindContext
		tok.Tag = m[1]
		return tok, nil
	}
	if m := metadataPattern.FindStringSubmatch(field); m != nil {
		tok.Kind = KindMetadata
		tok.Key, tok.Value = m[1], m[2]
		return tok, nil
	}
	if field[0] != '@' && field[0] != '+' {
		tok.Kind = KindWord
		return tok, nil
	}
	return Token{}, &TokenizeError{Pos: pos, Text: field}
}
