package particles

import "math"

// ParticleState is the wire form of a particle in a streamed frame.
type ParticleState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"r"`
	Color   string  `json:"color"`
	Opacity float64 `json:"alpha"`
}

// Snapshot is an immutable copy of a frame.
type Snapshot struct {
	Tick      uint64          `json:"tick"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Particles []ParticleState `json:"particles"`
}

// Snapshot captures the current frame. Coordinates are rounded to two
// decimals to keep frames small on the wire.
func (f *Field) Snapshot() Snapshot {
	states := make([]ParticleState, len(f.particles))
	for i, p := range f.particles {
		states[i] = ParticleState{
			X:       round2(p.X),
			Y:       round2(p.Y),
			Radius:  round2(p.Radius),
			Color:   p.CSSColor(),
			Opacity: round2(p.Opacity),
		}
	}
	return Snapshot{
		Tick:      f.ticks,
		Width:     f.width,
		Height:    f.height,
		Particles: states,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
