// Package palette assigns stable terminal colors to names, so the same
// project or context is drawn in the same color on every run.
package palette

import (
	"hash/fnv"

	"github.com/fatih/color"
)

var defaultColors = []color.Attribute{
	color.FgHiRed,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

type Palette struct {
	colors []*color.Color
}

// New returns a palette over attrs, or over the default set when attrs
// is empty.
func New(attrs ...color.Attribute) *Palette {
	if len(attrs) == 0 {
		attrs = defaultColors
	}
	p := &Palette{colors: make([]*color.Color, len(attrs))}
	for i, a := range attrs {
		p.colors[i] = color.New(a)
	}
	return p
}

func (p *Palette) index(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(p.colors)))
}

// For returns the color assigned to name.
func (p *Palette) For(name string) *color.Color {
	return p.colors[p.index(name)]
}

// Sprint renders text in the color assigned to name.
func (p *Palette) Sprint(name, text string) string {
	return p.For(name).Sprint(text)
}
