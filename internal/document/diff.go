package document

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff from before to after, or "" when they hold
// the same lines.
func Diff(before, after *Document) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before.Text()),
		B:        difflib.SplitLines(after.Text()),
		FromFile: "a/" + before.Name,
		ToFile:   "b/" + after.Name,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", before.Name, err)
	}
	return out, nil
}
