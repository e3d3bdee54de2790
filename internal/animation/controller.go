// Package animation owns the lifecycle of the hero particle loop and the
// carousel autoplay for one viewer.
//
// A Controller replaces ambient page-level timer state with an explicit
// object: Start begins the frame loop and autoplay, Pause/Resume follow page
// visibility, Resize is debounced so only the latest viewport in a burst is
// applied, and Stop tears every timer down. Under reduced motion the
// controller renders one static frame and never starts a timer.
//
// The frame loop and the autoplay run on independent tickers from the same
// injectable clock.
package animation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/hopehaven/internal/carousel"
	"github.com/conneroisu/hopehaven/internal/clock"
	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/particles"
)

const (
	// DefaultFrameInterval approximates one display refresh at 60 Hz.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultResizeDebounce is how long resize events must settle.
	DefaultResizeDebounce = 150 * time.Millisecond
)

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStatic
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStatic:
		return "static"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Viewport describes the drawing area of a viewer.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Touch  bool    `json:"touch"`
}

// FrameFunc receives every rendered frame.
type FrameFunc func(particles.Snapshot)

// Options configure a Controller. Zero values select defaults.
type Options struct {
	FrameInterval    time.Duration
	AutoplayInterval time.Duration
	ResizeDebounce   time.Duration
	ReducedMotion    bool
	Clock            clock.Clock
	OnFrame          FrameFunc
	Logger           logging.Logger
}

func (o *Options) applyDefaults() {
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	if o.AutoplayInterval <= 0 {
		o.AutoplayInterval = carousel.DefaultInterval
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = DefaultResizeDebounce
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
}

// Controller drives one particle field and, optionally, one carousel.
type Controller struct {
	opts     Options
	log      logging.Logger
	autoplay *carousel.Autoplay
	carousel *carousel.Carousel

	// lifecycle serialises Start/Pause/Resume/Stop; it is never held while
	// the frame loop needs mu.
	lifecycle sync.Mutex
	loopStop  chan struct{}
	loopDone  chan struct{}
	ticker    clock.Ticker
	stopCtx   func() bool

	mu          sync.Mutex
	field       *particles.Field
	state       State
	resizeTimer clock.Timer
	resizeGen   uint64

	frames atomic.Uint64
}

// NewController creates an idle controller. car may be nil for a hero-only
// controller.
func NewController(field *particles.Field, car *carousel.Carousel, opts Options) *Controller {
	opts.applyDefaults()

	c := &Controller{
		opts:     opts,
		log:      opts.Logger.WithComponent("animation"),
		field:    field,
		carousel: car,
	}
	if car != nil {
		c.autoplay = carousel.NewAutoplay(car, opts.AutoplayInterval, opts.Clock, opts.ReducedMotion)
	}
	return c
}

// Start initializes the field for vp and begins animating. Under reduced
// motion exactly one frame is rendered and no timer is started. Cancelling
// ctx stops the controller.
func (c *Controller) Start(ctx context.Context, vp Viewport) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	switch c.state {
	case StateStopped:
		c.mu.Unlock()
		return siteerrors.NewInternalError(siteerrors.CodeControllerStopped, "controller already stopped", nil)
	case StateIdle:
	default:
		c.mu.Unlock()
		return nil
	}

	c.field.Initialize(vp.Width, vp.Height, vp.Touch)
	if c.opts.ReducedMotion {
		c.state = StateStatic
		snap := c.field.Snapshot()
		c.mu.Unlock()

		c.emit(snap)
		c.log.Debug(ctx, "Rendered static frame", "particles", len(snap.Particles))
		return nil
	}
	c.state = StateRunning
	c.mu.Unlock()

	c.startLoop()
	if c.autoplay != nil {
		c.autoplay.Start()
	}
	if ctx != nil {
		c.stopCtx = context.AfterFunc(ctx, c.Stop)
	}

	c.log.Debug(ctx, "Animation started",
		"width", vp.Width, "height", vp.Height, "touch", vp.Touch,
		"particles", c.field.Len())
	return nil
}

func (c *Controller) startLoop() {
	c.ticker = c.opts.Clock.NewTicker(c.opts.FrameInterval)
	c.loopStop = make(chan struct{})
	c.loopDone = make(chan struct{})
	go c.loop(c.ticker, c.loopStop, c.loopDone)
}

func (c *Controller) stopLoop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.loopStop)
	<-c.loopDone
	c.ticker, c.loopStop, c.loopDone = nil, nil, nil
}

func (c *Controller) loop(ticker clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			select {
			case <-stop:
				return
			default:
			}
			c.frame()
		}
	}
}

func (c *Controller) frame() {
	c.mu.Lock()
	c.field.Tick()
	snap := c.field.Snapshot()
	c.mu.Unlock()

	c.emit(snap)
}

func (c *Controller) emit(snap particles.Snapshot) {
	c.frames.Add(1)
	if c.opts.OnFrame != nil {
		c.opts.OnFrame(snap)
	}
}

// Pause stops frames and autoplay, typically because the page is hidden.
func (c *Controller) Pause() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StatePaused
	c.mu.Unlock()

	c.stopLoop()
	if c.autoplay != nil {
		c.autoplay.Stop()
	}
}

// Resume restarts a paused controller.
func (c *Controller) Resume() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.mu.Unlock()

	c.startLoop()
	if c.autoplay != nil {
		c.autoplay.Start()
	}
}

// SetVisible maps page visibility onto Pause/Resume.
func (c *Controller) SetVisible(visible bool) {
	if visible {
		c.Resume()
		return
	}
	c.Pause()
}

// Resize schedules the field to be re-initialized for a new viewport once
// resize events have settled. Only the latest size in a burst is applied.
// Resizes are ignored under reduced motion and after Stop.
func (c *Controller) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStopped || c.state == StateStatic || c.state == StateIdle {
		return
	}
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeGen++
	gen := c.resizeGen
	c.resizeTimer = c.opts.Clock.AfterFunc(c.opts.ResizeDebounce, func() {
		c.applyResize(gen, width, height)
	})
}

func (c *Controller) applyResize(gen uint64, width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.resizeGen || c.state == StateStopped {
		return
	}
	c.resizeTimer = nil
	c.field.Resize(width, height)
	c.log.Debug(context.Background(), "Viewport resized",
		"width", width, "height", height, "particles", c.field.Len())
}

// Stop cancels every timer. No frame or autoplay advance happens after Stop
// returns. Stop is idempotent.
func (c *Controller) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
	c.mu.Unlock()

	c.stopLoop()
	if c.autoplay != nil {
		c.autoplay.Stop()
	}
	if c.stopCtx != nil {
		c.stopCtx()
		c.stopCtx = nil
	}
}

// Render draws the current frame onto surface without advancing it.
func (c *Controller) Render(surface particles.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.field.Render(surface)
}

// Snapshot returns the current frame without advancing it.
func (c *Controller) Snapshot() particles.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.field.Snapshot()
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Frames returns how many frames have been emitted, including the static
// frame under reduced motion.
func (c *Controller) Frames() uint64 {
	return c.frames.Load()
}

// Carousel returns the controlled carousel, or nil.
func (c *Controller) Carousel() *carousel.Carousel {
	return c.carousel
}

// Autoplay returns the carousel autoplay, or nil without a carousel.
func (c *Controller) Autoplay() *carousel.Autoplay {
	return c.autoplay
}

// ReducedMotion reports whether the controller renders statically.
func (c *Controller) ReducedMotion() bool {
	return c.opts.ReducedMotion
}
