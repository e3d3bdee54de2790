package views

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// SVGSurface renders a particle frame as an inline SVG document. It is used
// for the static hero frame shown under reduced motion.
type SVGSurface struct {
	b             strings.Builder
	width, height float64
	circles       int
}

// Clear starts a new document of the given size.
func (s *SVGSurface) Clear(width, height float64) {
	s.b.Reset()
	s.width, s.height = width, height
	s.circles = 0
}

// FillCircle adds one filled circle.
func (s *SVGSurface) FillCircle(x, y, radius float64, color colorful.Color, opacity float64) {
	s.b.WriteString(`<circle cx="`)
	s.b.WriteString(num(x))
	s.b.WriteString(`" cy="`)
	s.b.WriteString(num(y))
	s.b.WriteString(`" r="`)
	s.b.WriteString(num(radius))
	s.b.WriteString(`" fill="`)
	s.b.WriteString(color.Clamped().Hex())
	s.b.WriteString(`" fill-opacity="`)
	s.b.WriteString(num(opacity))
	s.b.WriteString(`"/>`)
	s.circles++
}

// Circles returns how many circles the current document holds.
func (s *SVGSurface) Circles() int {
	return s.circles
}

// String returns the complete SVG element.
func (s *SVGSurface) String() string {
	var out strings.Builder
	out.WriteString(`<svg class="hero-particles" aria-hidden="true" focusable="false" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	out.WriteString(num(s.width))
	out.WriteString(" ")
	out.WriteString(num(s.height))
	out.WriteString(`" preserveAspectRatio="xMidYMid slice">`)
	out.WriteString(s.b.String())
	out.WriteString(`</svg>`)
	return out.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
