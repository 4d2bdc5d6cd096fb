package todotxt

import "fmt"

// Priority is a single uppercase letter, A being the most urgent. The zero
// value means no priority.
type Priority byte

const NoPriority Priority = 0

// Scale is the ordered range that IncreasePriority and DecreasePriority
// move within, most urgent first.
var Scale = []Priority{'A', 'B', 'C'}

// ParsePriority accepts a single letter A-Z. The empty string is NoPriority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return NoPriority, nil
	}
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return NoPriority, fmt.Errorf("invalid priority %q", s)
	}
	return Priority(s[0]), nil
}

func (p Priority) String() string {
	if p == NoPriority {
		return ""
	}
	return string(rune(p))
}

func (p Priority) IsSet() bool {
	return p != NoPriority
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func scaleIndex(p Priority) int {
	for i, s := range Scale {
		if s == p {
			return i
		}
	}
	return -1
}

// shiftPriority moves p by delta steps along Scale, clamping at both ends.
// An unset priority enters the scale at the end it moves away from: A for
// an increase, C for a decrease.
func shiftPriority(p Priority, delta int) (Priority, error) {
	if p == NoPriority {
		if delta < 0 {
			return Scale[0], nil
		}
		return Scale[len(Scale)-1], nil
	}
	i := scaleIndex(p)
	if i < 0 {
		return p, &PriorityScaleError{Priority: p}
	}
	i = max(0, min(len(Scale)-1, i+delta))
	return Scale[i], nil
}
