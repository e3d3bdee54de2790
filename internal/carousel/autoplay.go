package carousel

import (
	"sync"
	"time"

	"github.com/conneroisu/hopehaven/internal/clock"
)

// DefaultInterval is the autoplay cadence.
const DefaultInterval = 5000 * time.Millisecond

// Autoplay advances a carousel to the next slide on every interval.
type Autoplay struct {
	carousel      *Carousel
	interval      time.Duration
	clock         clock.Clock
	reducedMotion bool

	mu     sync.Mutex
	ticker clock.Ticker
	stop   chan struct{}
	done   chan struct{}
	starts int
}

// NewAutoplay creates a stopped autoplay. A non-positive interval selects
// DefaultInterval and a nil clock selects wall time.
func NewAutoplay(c *Carousel, interval time.Duration, clk clock.Clock, reducedMotion bool) *Autoplay {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Autoplay{
		carousel:      c,
		interval:      interval,
		clock:         clk,
		reducedMotion: reducedMotion,
	}
}

// Start begins advancing. It reports false, and starts nothing, under
// reduced motion or when already running.
func (a *Autoplay) Start() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reducedMotion || a.ticker != nil {
		return false
	}

	a.ticker = a.clock.NewTicker(a.interval)
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	a.starts++
	go a.run(a.ticker, a.stop, a.done)
	return true
}

func (a *Autoplay) run(ticker clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
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
			a.carousel.Advance(Next)
		}
	}
}

// Stop halts advancing. No advance happens after Stop returns.
func (a *Autoplay) Stop() {
	a.mu.Lock()
	if a.ticker == nil {
		a.mu.Unlock()
		return
	}
	a.ticker.Stop()
	close(a.stop)
	done := a.done
	a.ticker, a.stop, a.done = nil, nil, nil
	a.mu.Unlock()

	<-done
}

// Running reports whether the timer is active.
func (a *Autoplay) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticker != nil
}

// Starts returns how many times the timer has been started.
func (a *Autoplay) Starts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts
}

// Interval returns the autoplay cadence.
func (a *Autoplay) Interval() time.Duration {
	return a.interval
}
