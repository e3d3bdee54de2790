// Package preview renders the hero particle field in a terminal with tcell.
package preview

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Terminal cells are roughly twice as tall as they are wide. A cell stands
// for this many field pixels.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

var background = colorful.Color{R: 0.04, G: 0.02, B: 0.1}

// Surface draws particles onto a region of a tcell screen. The field's
// coordinate space is scaled onto cols x rows cells.
type Surface struct {
	screen     tcell.Screen
	cols, rows int
	sx, sy     float64
	drawn      int
}

// NewSurface draws onto the top rows of screen.
func NewSurface(screen tcell.Screen, rows int) *Surface {
	return &Surface{screen: screen, rows: rows}
}

// SetRows changes how many rows the surface covers.
func (s *Surface) SetRows(rows int) {
	s.rows = rows
}

// Clear blanks the drawing region and maps a width x height field onto it.
func (s *Surface) Clear(width, height float64) {
	s.cols, _ = s.screen.Size()
	s.drawn = 0
	s.sx, s.sy = 0, 0
	if width > 0 {
		s.sx = float64(s.cols) / width
	}
	if height > 0 {
		s.sy = float64(s.rows) / height
	}

	style := tcell.StyleDefault.Background(toTcell(background))
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// FillCircle marks the cell under the particle's centre. Opacity is applied
// by blending toward the background, since terminals have no alpha.
func (s *Surface) FillCircle(x, y, radius float64, color colorful.Color, opacity float64) {
	col, row, ok := s.cell(x, y)
	if !ok {
		return
	}
	fg := background.BlendRgb(color, clamp01(opacity)).Clamped()
	style := tcell.StyleDefault.
		Foreground(toTcell(fg)).
		Background(toTcell(background))
	s.screen.SetContent(col, row, glyph(radius), nil, style)
	s.drawn++
}

// Drawn returns how many particles landed on screen since the last Clear.
func (s *Surface) Drawn() int {
	return s.drawn
}

func (s *Surface) cell(x, y float64) (int, int, bool) {
	col := int(math.Floor(x * s.sx))
	row := int(math.Floor(y * s.sy))
	// Particles sitting exactly on the far edge belong to the last cell.
	if col == s.cols && col > 0 {
		col--
	}
	if row == s.rows && row > 0 {
		row--
	}
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return 0, 0, false
	}
	return col, row, true
}

func glyph(radius float64) rune {
	switch {
	case radius < 2:
		return '·'
	case radius < 3:
		return '•'
	default:
		return '●'
	}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
