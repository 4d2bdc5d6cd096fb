package document

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kazz187/todotxt/pkg/todotxt"
)

type entry struct {
	orig int
	line string
	task *todotxt.Task
}

// Sort rewrites the document as its tasks in canonical sorted order. Lines
// that do not parse are kept verbatim after the tasks, in their original
// order. Blank lines are dropped.
//
// cursor is the line the caller's cursor is on. Sort returns the line that
// now holds the same entry, and whether any line changed.
func (d *Document) Sort(p *todotxt.Parser, cursor int) (int, bool) {
	var tasks, invalid []entry
	for i, l := range d.Lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if t, ok := p.ParseLine(l); ok {
			tasks = append(tasks, entry{orig: i, line: t.String(), task: t})
			continue
		}
		invalid = append(invalid, entry{orig: i, line: l})
	}
	slices.SortStableFunc(tasks, func(a, b entry) int {
		return strings.Compare(a.line, b.line)
	})

	ordered := append(tasks, invalid...)
	lines := make([]string, len(ordered))
	newCursor := -1
	for i, e := range ordered {
		lines[i] = e.line
		if e.orig == cursor {
			newCursor = i
		}
	}
	if newCursor < 0 {
		newCursor = clamp(cursor, len(lines))
	}
	changed := !slices.Equal(d.Lines, lines)
	d.Lines = lines
	return newCursor, changed
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(i, n-1))
}

// Toggle flips the done state of the task on line i and re-sorts. The
// returned cursor follows the task when it was reopened and stays on line
// i when it was completed.
func (d *Document) Toggle(p *todotxt.Parser, i int, today todotxt.Date) (int, *todotxt.Task, error) {
	t, err := d.ParseTask(p, i)
	if err != nil {
		return i, nil, err
	}
	t.ToggleDone(today)
	t = d.setTask(p, i, t)
	cursor, _ := d.Sort(p, i)
	if t.Done {
		cursor = clamp(i, len(d.Lines))
	}
	return cursor, t, nil
}

// setTask writes t to line i and returns the task as it reads back from
// that line. A completion date without a creation date reads back as both,
// so the returned task always formats to the stored line.
func (d *Document) setTask(p *todotxt.Parser, i int, t *todotxt.Task) *todotxt.Task {
	line := t.String()
	if rt, ok := p.ParseLine(line); ok {
		t = rt
		line = rt.String()
	}
	d.Lines[i] = line
	return t
}

type Direction int

const (
	Up Direction = iota
	Down
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up", "increase":
		return Up, nil
	case "down", "decrease":
		return Down, nil
	default:
		return Up, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// ShiftPriority raises or lowers the priority of the task on line i and
// re-sorts. The returned cursor follows the task.
func (d *Document) ShiftPriority(p *todotxt.Parser, i int, dir Direction) (int, *todotxt.Task, error) {
	t, err := d.ParseTask(p, i)
	if err != nil {
		return i, nil, err
	}
	if dir == Down {
		err = t.DecreasePriority()
	} else {
		err = t.IncreasePriority()
	}
	if err != nil {
		return i, nil, fmt.Errorf("line %d: %w", i, err)
	}
	t = d.setTask(p, i, t)
	cursor, _ := d.Sort(p, i)
	return cursor, t, nil
}

// FillTemplate turns an empty line i into a new-task template dated today,
// followed by a space so typing continues the description. i may equal the
// line count to start a new line. It returns the cursor column and whether
// the line was filled.
func (d *Document) FillTemplate(i int, today todotxt.Date, priority todotxt.Priority) (int, bool) {
	if i == len(d.Lines) {
		d.Lines = append(d.Lines, "")
	}
	if i < 0 || i >= len(d.Lines) || strings.TrimSpace(d.Lines[i]) != "" {
		return 0, false
	}
	t := todotxt.NewTemplate(today)
	t.Priority = priority
	d.Lines[i] = t.String() + " "
	return len(d.Lines[i]), true
}

// Append parses text and adds it in canonical form as the last line.
func (d *Document) Append(p *todotxt.Parser, text string) (int, *todotxt.Task, error) {
	t, err := p.Parse(text)
	if err != nil {
		return -1, nil, fmt.Errorf("%w: %w", ErrInvalidLine, err)
	}
	d.Lines = append(d.Lines, t.String())
	return len(d.Lines) - 1, t, nil
}

// Search returns the document's tasks matching every criterion. With
// strict set, criteria that are not tags or key:value pairs are an error
// instead of being ignored.
func (d *Document) Search(p *todotxt.Parser, criteria []string, strict bool) ([]*todotxt.Task, error) {
	tasks := d.Tasks(p)
	if strict {
		return todotxt.SearchStrict(tasks, criteria)
	}
	return todotxt.Search(tasks, criteria), nil
}
