package todotxt

import (
	"fmt"
	"regexp"
	"strings"
)

var criterionMetadataPattern = regexp.MustCompile(`^([\p{L}\p{M}\p{N}_-]+):([\p{L}\p{M}\p{N}_-]+)$`)

// Criterion is one search filter.
type Criterion interface {
	Match(t *Task) bool
	String() string
}

// ParseCriterion interprets "@context", "+project" and "key:value".
// Anything else fails with ErrUnrecognizedCriterion.
func ParseCriterion(s string) (Criterion, error) {
	switch {
	case strings.HasPrefix(s, "@") && len(s) > 1:
		return ContextCriterion(s[1:]), nil
	case strings.HasPrefix(s, "+") && len(s) > 1:
		return ProjectCriterion(s[1:]), nil
	}
	if m := criterionMetadataPattern.FindStringSubmatch(s); m != nil {
		return MetadataCriterion{Key: m[1], Value: m[2]}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedCriterion, s)
}

// ContextCriterion matches tasks tagged with the context.
type ContextCriterion string

func (c ContextCriterion) Match(t *Task) bool { return t.HasContext(string(c)) }
func (c ContextCriterion) String() string     { return "@" + string(c) }

// ProjectCriterion matches tasks tagged with the project.
type ProjectCriterion string

func (c ProjectCriterion) Match(t *Task) bool { return t.HasProject(string(c)) }
func (c ProjectCriterion) String() string     { return "+" + string(c) }

// MetadataCriterion matches tasks whose metadata holds exactly Key:Value.
type MetadataCriterion struct {
	Key   string
	Value string
}

func (c MetadataCriterion) Match(t *Task) bool {
	v, ok := t.Metadata.Get(c.Key)
	return ok && v == c.Value
}

func (c MetadataCriterion) String() string { return c.Key + ":" + c.Value }
