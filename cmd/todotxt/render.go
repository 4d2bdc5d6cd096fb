package main

import (
	"strings"

	"github.com/fatih/color"

	"github.com/kazz187/todotxt/pkg/palette"
	"github.com/kazz187/todotxt/pkg/todotxt"
)

var (
	doneColor     = color.New(color.Faint)
	projectColors = palette.New()
	contextColor  = color.New(color.FgMagenta)
	metadataColor = color.New(color.FgBlue)
	dateColor     = color.New(color.FgHiBlack)
	priorityColor = map[todotxt.Priority]*color.Color{
		'A': color.New(color.FgRed, color.Bold),
		'B': color.New(color.FgYellow),
		'C': color.New(color.FgGreen),
	}
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	hunkColor    = color.New(color.FgCyan)
)

// colorize renders t in canonical form with each part colored by kind.
// Each project keeps its own color. Done tasks are dimmed as a whole.
func colorize(t *todotxt.Task) string {
	if t.Done {
		return doneColor.Sprint(t.String())
	}
	var parts []string
	if t.Priority.IsSet() {
		c, ok := priorityColor[t.Priority]
		if !ok {
			c = color.New(color.Reset)
		}
		parts = append(parts, c.Sprint("("+t.Priority.String()+")"))
	}
	if t.CompletionDate != nil {
		parts = append(parts, dateColor.Sprint(t.CompletionDate.String()))
	}
	if t.CreationDate != nil {
		parts = append(parts, dateColor.Sprint(t.CreationDate.String()))
	}
	parts = append(parts, t.Description)
	for _, p := range t.ProjectTags {
		parts = append(parts, projectColors.Sprint(p, "+"+p))
	}
	for _, c := range t.ContextTags {
		parts = append(parts, contextColor.Sprint("@"+c))
	}
	for _, f := range t.Metadata {
		parts = append(parts, metadataColor.Sprint(f.Key+":"+f.Value))
	}
	return strings.Join(parts, " ")
}

func colorizeDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			b.WriteString(l)
		case strings.HasPrefix(l, "+"):
			b.WriteString(addedColor.Sprint(l))
		case strings.HasPrefix(l, "-"):
			b.WriteString(removedColor.Sprint(l))
		case strings.HasPrefix(l, "@@"):
			b.WriteString(hunkColor.Sprint(l))
		default:
			b.WriteString(l)
		}
	}
	return b.String()
}
