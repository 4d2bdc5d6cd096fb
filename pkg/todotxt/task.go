package todotxt

import (
	"slices"
	"strings"
)

// Task is one parsed todo.txt line.
type Task struct {
	Done           bool     `json:"done"`
	Priority       Priority `json:"priority,omitempty"`
	CreationDate   *Date    `json:"creation_date,omitempty"`
	CompletionDate *Date    `json:"completion_date,omitempty"`
	Description    string   `json:"description"`
	ProjectTags    []string `json:"project_tags,omitempty"`
	ContextTags    []string `json:"context_tags,omitempty"`
	Metadata       Metadata `json:"metadata,omitempty"`
}

// NewTemplate returns the blank task offered when a new line is started:
// only the creation date is set.
func NewTemplate(today Date) *Task {
	return &Task{CreationDate: today.Ptr()}
}

// String formats the task in canonical todo.txt form:
//
//	x (P) completion creation description +project @context key:value
//
// Absent segments are omitted and segments are separated by one space.
func (t *Task) String() string {
	parts := make([]string, 0, 5+len(t.ProjectTags)+len(t.ContextTags)+len(t.Metadata))
	if t.Done {
		parts = append(parts, "x")
	}
	if t.Priority.IsSet() {
		parts = append(parts, "("+t.Priority.String()+")")
	}
	if t.CompletionDate != nil {
		parts = append(parts, t.CompletionDate.String())
	}
	if t.CreationDate != nil {
		parts = append(parts, t.CreationDate.String())
	}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	for _, tag := range t.ProjectTags {
		parts = append(parts, "+"+tag)
	}
	for _, tag := range t.ContextTags {
		parts = append(parts, "@"+tag)
	}
	for _, f := range t.Metadata {
		parts = append(parts, f.Key+":"+f.Value)
	}
	return strings.Join(parts, " ")
}

// Format returns the canonical line for t. A nil task formats as "".
func Format(t *Task) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// IncreasePriority moves the priority one step toward A. An unset priority
// becomes A. A priority outside Scale is left as is and reported with
// ErrPriorityOutOfScale.
func (t *Task) IncreasePriority() error {
	p, err := shiftPriority(t.Priority, -1)
	if err != nil {
		return err
	}
	t.Priority = p
	return nil
}

// DecreasePriority moves the priority one step toward C. An unset priority
// becomes C.
func (t *Task) DecreasePriority() error {
	p, err := shiftPriority(t.Priority, 1)
	if err != nil {
		return err
	}
	t.Priority = p
	return nil
}

// ToggleDone flips the done state. Completing stamps today as the completion
// date and reopening clears it.
func (t *Task) ToggleDone(today Date) {
	t.Done = !t.Done
	if t.Done {
		t.CompletionDate = today.Ptr()
		return
	}
	t.CompletionDate = nil
}

func (t *Task) HasProject(tag string) bool {
	return slices.Contains(t.ProjectTags, tag)
}

func (t *Task) HasContext(tag string) bool {
	return slices.Contains(t.ContextTags, tag)
}

func (t *Task) Clone() *Task {
	c := *t
	if t.CreationDate != nil {
		c.CreationDate = t.CreationDate.Ptr()
	}
	if t.CompletionDate != nil {
		c.CompletionDate = t.CompletionDate.Ptr()
	}
	c.ProjectTags = slices.Clone(t.ProjectTags)
	c.ContextTags = slices.Clone(t.ContextTags)
	c.Metadata = t.Metadata.Clone()
	return &c
}

// Equal reports whether both tasks hold the same fields. Nil and empty tag
// lists compare equal.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Done == other.Done &&
		t.Priority == other.Priority &&
		equalDate(t.CreationDate, other.CreationDate) &&
		equalDate(t.CompletionDate, other.CompletionDate) &&
		t.Description == other.Description &&
		slices.Equal(t.ProjectTags, other.ProjectTags) &&
		slices.Equal(t.ContextTags, other.ContextTags) &&
		slices.Equal(t.Metadata, other.Metadata)
}

func equalDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
