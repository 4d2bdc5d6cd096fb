package palette

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPalette_ForIsStable(t *testing.T) {
	p, q := New(), New()
	for _, name := range []string{"garden", "family", "work", "日本語"} {
		assert.Same(t, p.For(name), p.For(name), name)
		assert.Equal(t, p.index(name), q.index(name), name)
	}
}

func TestPalette_SingleColor(t *testing.T) {
	p := New(color.FgCyan)
	assert.Same(t, p.For("a"), p.For("b"))
}

func TestPalette_SprintWithoutColor(t *testing.T) {
	p := New()
	c := p.For("garden")
	c.DisableColor()
	defer c.EnableColor()
	assert.Equal(t, "+garden", p.Sprint("garden", "+garden"))
}
