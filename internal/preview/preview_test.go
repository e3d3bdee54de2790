package preview

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/hopehaven/internal/animation"
	"github.com/conneroisu/hopehaven/internal/clock"
	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/particles"
)

var epoch = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(cols, rows)
	return screen
}

func row(screen tcell.SimulationScreen, y int) string {
	cols, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestSurface_MapsFieldOntoCells(t *testing.T) {
	screen := newScreen(t, 80, 24)
	defer screen.Fini()

	s := NewSurface(screen, 23)
	s.Clear(640, 368)

	red := colorful.Color{R: 1}
	s.FillCircle(0, 0, 3.5, red, 1)
	s.FillCircle(639.9, 367.9, 1, red, 1)
	s.FillCircle(640, 368, 2.5, red, 1)
	s.FillCircle(-1, 10, 2, red, 1)
	s.FillCircle(10, 500, 2, red, 1)

	assert.Equal(t, 3, s.Drawn())

	r, _, style, _ := screen.GetContent(0, 0)
	assert.Equal(t, '●', r)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)

	r, _, _, _ = screen.GetContent(79, 22)
	assert.Equal(t, '•', r, "far edge lands on the last cell")

	// The status row is outside the surface.
	r, _, _, _ = screen.GetContent(0, 23)
	assert.NotEqual(t, '•', r)
}

func TestSurface_OpacityBlendsTowardBackground(t *testing.T) {
	screen := newScreen(t, 10, 10)
	defer screen.Fini()

	s := NewSurface(screen, 10)
	s.Clear(80, 160)
	s.FillCircle(4, 4, 2, colorful.Color{R: 1, G: 1, B: 1}, 0)

	_, _, style, _ := screen.GetContent(0, 0)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, bg, fg)
}

func TestSurface_ClearBlanksRegion(t *testing.T) {
	screen := newScreen(t, 10, 5)
	defer screen.Fini()

	s := NewSurface(screen, 5)
	s.Clear(80, 80)
	s.FillCircle(1, 1, 4, colorful.Color{G: 1}, 1)
	s.Clear(80, 80)

	for y := 0; y < 5; y++ {
		assert.Equal(t, strings.Repeat(" ", 10), row(screen, y))
	}
	assert.Zero(t, s.Drawn())
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, '·', glyph(1.5))
	assert.Equal(t, '•', glyph(2.5))
	assert.Equal(t, '●', glyph(3.4))
}

type runningPreview struct {
	screen tcell.SimulationScreen
	clock  *clock.Fake
	p      *Preview
	cancel context.CancelFunc
	done   chan error
}

func startPreview(t *testing.T, reduced bool) *runningPreview {
	t.Helper()
	screen := newScreen(t, 80, 24)
	fake := clock.NewFake(epoch)

	p, err := New(screen, content.Default(), Options{
		Animation: config.AnimationConfig{
			FrameInterval:    16 * time.Millisecond,
			AutoplayInterval: 5 * time.Second,
			ResizeDebounce:   150 * time.Millisecond,
			ReducedMotion:    reduced,
			Seed:             7,
		},
		Clock: fake,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rp := &runningPreview{screen: screen, clock: fake, p: p, cancel: cancel, done: make(chan error, 1)}
	go func() { rp.done <- p.Run(ctx) }()
	t.Cleanup(cancel)

	want := animation.StateRunning
	if reduced {
		want = animation.StateStatic
	}
	require.Eventually(t, func() bool { return p.Controller().State() == want }, 2*time.Second, 5*time.Millisecond)
	return rp
}

func (rp *runningPreview) wait(t *testing.T) {
	t.Helper()
	select {
	case err := <-rp.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("preview did not stop")
	}
}

func (rp *runningPreview) status() string {
	return row(rp.screen, 23)
}

func TestPreview_QuitKeyStopsEverything(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rp := startPreview(t, false)
	rp.clock.Advance(16 * time.Millisecond)
	require.Eventually(t, func() bool { return rp.p.Controller().Frames() >= 1 }, 2*time.Second, 5*time.Millisecond)

	rp.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	rp.wait(t)

	assert.Equal(t, animation.StateStopped, rp.p.Controller().State())
	assert.Zero(t, rp.clock.ActiveTickers())
}

func TestPreview_ContextCancelStops(t *testing.T) {
	rp := startPreview(t, false)
	rp.cancel()
	rp.wait(t)
	assert.Equal(t, animation.StateStopped, rp.p.Controller().State())
}

func TestPreview_DrawsParticlesAndStatus(t *testing.T) {
	rp := startPreview(t, false)
	defer func() {
		rp.cancel()
		rp.wait(t)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(rp.status(), "Hope Haven")
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, rp.status(), "1/3")

	require.Eventually(t, func() bool {
		for y := 0; y < 23; y++ {
			if strings.ContainsAny(row(rp.screen, y), "·•●") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPreview_SpaceTogglesPause(t *testing.T) {
	rp := startPreview(t, false)
	defer func() {
		rp.cancel()
		rp.wait(t)
	}()
	ctrl := rp.p.Controller()

	rp.screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	require.Eventually(t, func() bool { return ctrl.State() == animation.StatePaused }, 2*time.Second, 5*time.Millisecond)

	rp.screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	require.Eventually(t, func() bool { return ctrl.State() == animation.StateRunning }, 2*time.Second, 5*time.Millisecond)
}

func TestPreview_ArrowKeysChangeSlide(t *testing.T) {
	rp := startPreview(t, false)
	defer func() {
		rp.cancel()
		rp.wait(t)
	}()
	car := rp.p.Controller().Carousel()

	rp.screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return car.Index() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(rp.status(), "2/3") }, 2*time.Second, 5*time.Millisecond)

	rp.screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	rp.screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return car.Index() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestPreview_ResizeReinitializesField(t *testing.T) {
	rp := startPreview(t, false)
	defer func() {
		rp.cancel()
		rp.wait(t)
	}()

	rp.screen.SetSize(100, 31)
	require.NoError(t, rp.screen.PostEvent(tcell.NewEventResize(100, 31)))
	require.Eventually(t, func() bool { return rp.clock.PendingTimers() == 1 }, 2*time.Second, 5*time.Millisecond)

	rp.clock.Advance(150 * time.Millisecond)
	snap := rp.p.Controller().Snapshot()
	assert.Equal(t, 100*CellWidth, snap.Width)
	assert.Equal(t, 30*CellHeight, snap.Height)
	assert.Len(t, snap.Particles, particles.Count(100*CellWidth, 30*CellHeight, false))
}

func TestPreview_ReducedMotionDrawsOnce(t *testing.T) {
	rp := startPreview(t, true)
	defer func() {
		rp.cancel()
		rp.wait(t)
	}()

	assert.EqualValues(t, 1, rp.p.Controller().Frames())
	rp.clock.Advance(10 * time.Second)
	assert.EqualValues(t, 1, rp.p.Controller().Frames())
	assert.Zero(t, rp.clock.ActiveTickers())
}
