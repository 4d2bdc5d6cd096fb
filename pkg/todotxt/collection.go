package todotxt

import (
	"slices"
	"strings"
)

// Sort returns tasks ordered by their canonical string, compared byte by
// byte. Equal strings keep their input order. The input is not modified.
//
// In byte order "(" sorts before digits and letters, so prioritized tasks
// come first and done tasks, starting with "x", come last.
func Sort(tasks []*Task) []*Task {
	keyed := make([]sortKey, len(tasks))
	for i, t := range tasks {
		keyed[i] = sortKey{key: t.String(), task: t}
	}
	slices.SortStableFunc(keyed, func(a, b sortKey) int {
		return strings.Compare(a.key, b.key)
	})
	out := make([]*Task, len(keyed))
	for i, k := range keyed {
		out[i] = k.task
	}
	return out
}

type sortKey struct {
	key  string
	task *Task
}

// Search keeps the tasks matched by every criterion. Criteria that are not
// tags or key:value pairs are ignored.
func Search(tasks []*Task, criteria []string) []*Task {
	var matchers []Criterion
	for _, s := range criteria {
		c, err := ParseCriterion(s)
		if err != nil {
			continue
		}
		matchers = append(matchers, c)
	}
	return filter(tasks, matchers)
}

// SearchStrict is Search but fails with ErrUnrecognizedCriterion on the
// first criterion it cannot interpret.
func SearchStrict(tasks []*Task, criteria []string) ([]*Task, error) {
	matchers := make([]Criterion, 0, len(criteria))
	for _, s := range criteria {
		c, err := ParseCriterion(s)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, c)
	}
	return filter(tasks, matchers), nil
}

func filter(tasks []*Task, matchers []Criterion) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if matchAll(t, matchers) {
			out = append(out, t)
		}
	}
	return out
}

func matchAll(t *Task, matchers []Criterion) bool {
	for _, m := range matchers {
		if !m.Match(t) {
			return false
		}
	}
	return true
}
