// Package particles implements the ambient particle field drawn behind the
// hero banner.
//
// A Field owns a batch of particles sized from the viewport area. Tick moves
// every particle by its velocity and reflects it off the four edges; Render
// draws the current positions onto any Surface (an SVG document, a terminal
// screen, a recorder in tests). A Field is not safe for concurrent use; the
// animation controller serialises access to it.
package particles

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// MinParticles and MaxParticles bound the desktop particle count.
	MinParticles = 8
	MaxParticles = 80

	// AreaPerParticle is the viewport area, in square CSS pixels, that earns
	// one particle.
	AreaPerParticle = 14000.0

	// MinCanvasHeight keeps the hero canvas tall on short viewports.
	MinCanvasHeight = 500.0

	canvasHeightRatio = 0.85

	saturation = 0.70
	lightness  = 0.60
)

// Particle is a single animated point.
type Particle struct {
	X, Y           float64
	SpeedX, SpeedY float64
	Radius         float64
	Hue            float64
	Opacity        float64
}

// Color returns the particle colour as an RGB value.
func (p Particle) Color() colorful.Color {
	return colorful.Hsl(p.Hue, saturation, lightness)
}

// CSSColor returns the colour in the hsl() form used by the browser canvas.
func (p Particle) CSSColor() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", p.Hue, saturation*100, lightness*100)
}

// Surface is a drawing target for a frame.
type Surface interface {
	Clear(width, height float64)
	FillCircle(x, y, radius float64, color colorful.Color, opacity float64)
}

// Count returns how many particles a viewport of the given size receives:
// one per AreaPerParticle clamped to [MinParticles, MaxParticles], halved on
// touch devices.
func Count(width, height float64, touch bool) int {
	area := width * height
	if math.IsNaN(area) || area < 0 {
		area = 0
	}

	base := MinParticles
	if perArea := math.Floor(area / AreaPerParticle); perArea > MinParticles {
		base = int(math.Min(perArea, MaxParticles))
	}

	if touch {
		return base / 2
	}
	return base
}

// CanvasHeight returns the hero canvas height for a browser inner height.
func CanvasHeight(innerHeight float64) float64 {
	return math.Max(innerHeight*canvasHeightRatio, MinCanvasHeight)
}

// Field is a set of particles bound to a viewport.
type Field struct {
	rng       Source
	width     float64
	height    float64
	touch     bool
	ticks     uint64
	particles []Particle
}

// NewField creates an empty field drawing randomness from rng.
func NewField(rng Source) *Field {
	if rng == nil {
		rng = NewSource(1)
	}
	return &Field{rng: rng}
}

// Initialize repopulates the field for a viewport.
func (f *Field) Initialize(viewportWidth, viewportHeight float64, isTouchDevice bool) {
	f.width = nonNegative(viewportWidth)
	f.height = nonNegative(viewportHeight)
	f.touch = isTouchDevice
	f.ticks = 0

	n := Count(f.width, f.height, f.touch)
	if cap(f.particles) >= n {
		f.particles = f.particles[:n]
	} else {
		f.particles = make([]Particle, n)
	}
	for i := range f.particles {
		f.particles[i] = f.spawn()
	}
}

func (f *Field) spawn() Particle {
	radiusSpan, radiusMin := 3.0, 1.0
	speedSpan := 1.0
	if f.touch {
		radiusSpan, radiusMin = 2.0, 0.5
		speedSpan = 0.6
	}

	return Particle{
		X:       f.rng.Float64() * f.width,
		Y:       f.rng.Float64() * f.height,
		Radius:  between(f.rng, radiusMin, radiusSpan),
		SpeedX:  between(f.rng, -speedSpan/2, speedSpan),
		SpeedY:  between(f.rng, -speedSpan/2, speedSpan),
		Hue:     between(f.rng, 30, 60),
		Opacity: between(f.rng, 0.2, 0.4),
	}
}

// Resize re-initializes the field for a new viewport, keeping the device
// class.
func (f *Field) Resize(newWidth, newHeight float64) {
	f.Initialize(newWidth, newHeight, f.touch)
}

// Tick advances every particle by one frame.
func (f *Field) Tick() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X, p.SpeedX = reflect(p.X+p.SpeedX, p.SpeedX, f.width)
		p.Y, p.SpeedY = reflect(p.Y+p.SpeedY, p.SpeedY, f.height)
	}
	f.ticks++
}

// reflect folds pos back into [0, limit] and flips speed once when the
// boundary was crossed.
func reflect(pos, speed, limit float64) (float64, float64) {
	switch {
	case pos < 0:
		pos, speed = -pos, -speed
	case pos > limit:
		pos, speed = 2*limit-pos, -speed
	default:
		return pos, speed
	}
	return math.Max(0, math.Min(limit, pos)), speed
}

// Render draws the current frame onto surface.
func (f *Field) Render(surface Surface) {
	surface.Clear(f.width, f.height)
	for _, p := range f.particles {
		surface.FillCircle(p.X, p.Y, p.Radius, p.Color(), p.Opacity)
	}
}

// Len returns the number of particles.
func (f *Field) Len() int {
	return len(f.particles)
}

// Bounds returns the viewport size.
func (f *Field) Bounds() (width, height float64) {
	return f.width, f.height
}

// Touch reports whether the field was sized for a touch device.
func (f *Field) Touch() bool {
	return f.touch
}

// Ticks returns the number of frames advanced since the last Initialize.
func (f *Field) Ticks() uint64 {
	return f.ticks
}

// Particles returns a copy of the particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
