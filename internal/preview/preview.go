package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/conneroisu/hopehaven/internal/animation"
	"github.com/conneroisu/hopehaven/internal/carousel"
	"github.com/conneroisu/hopehaven/internal/clock"
	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/particles"
)

// Options configure a Preview.
type Options struct {
	Animation config.AnimationConfig
	Touch     bool
	Clock     clock.Clock
	Source    particles.Source
	Logger    logging.Logger
}

// Preview animates the hero field on a terminal and shows the About
// carousel caption on the status line.
//
// Keys: space pauses, left/right change slide, q or Esc quits.
type Preview struct {
	screen  tcell.Screen
	surface *Surface
	ctrl    *animation.Controller
	car     *carousel.Carousel
	org     string
	touch   bool
	log     logging.Logger

	redraw chan struct{}
}

// New builds a preview on an initialized screen. Run takes ownership of the
// screen and finalizes it on return.
func New(screen tcell.Screen, c *content.Content, opts Options) (*Preview, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Source == nil {
		seed := opts.Animation.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		opts.Source = particles.NewSource(seed)
	}

	car, err := carousel.New(c.About.Slides)
	if err != nil {
		return nil, fmt.Errorf("preview carousel: %w", err)
	}

	p := &Preview{
		screen: screen,
		car:    car,
		org:    c.Org,
		touch:  opts.Touch,
		log:    opts.Logger.WithComponent("preview"),
		redraw: make(chan struct{}, 1),
	}
	_, rows := screen.Size()
	p.surface = NewSurface(screen, fieldRows(rows))

	car.OnChange(func(int) { p.requestRedraw() })
	p.ctrl = animation.NewController(particles.NewField(opts.Source), car, animation.Options{
		FrameInterval:    opts.Animation.FrameInterval,
		AutoplayInterval: opts.Animation.AutoplayInterval,
		ResizeDebounce:   opts.Animation.ResizeDebounce,
		ReducedMotion:    opts.Animation.ReducedMotion,
		Clock:            opts.Clock,
		Logger:           opts.Logger,
		OnFrame:          func(particles.Snapshot) { p.requestRedraw() },
	})
	return p, nil
}

// Controller exposes the animation controller.
func (p *Preview) Controller() *animation.Controller {
	return p.ctrl
}

// Run animates until ctx ends or the user quits.
func (p *Preview) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 8)
	stopPoll := make(chan struct{})
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stopPoll:
				return
			}
		}
	}()
	defer func() {
		p.ctrl.Stop()
		close(stopPoll)
		p.screen.Fini()
		<-pollDone
	}()

	if err := p.ctrl.Start(ctx, p.viewport()); err != nil {
		return err
	}
	p.log.Debug(ctx, "Preview started", "reduced_motion", p.ctrl.ReducedMotion())
	p.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.redraw:
			p.draw()
		case ev := <-events:
			if p.handle(ev) {
				return nil
			}
		}
	}
}

// handle applies one terminal event and reports whether to quit.
func (p *Preview) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyLeft:
			p.car.Advance(carousel.Previous)
		case tcell.KeyRight:
			p.car.Advance(carousel.Next)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case ' ':
				p.togglePause()
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
		_, rows := p.screen.Size()
		p.surface.SetRows(fieldRows(rows))
		vp := p.viewport()
		p.ctrl.Resize(vp.Width, vp.Height)
		p.draw()
	}
	return false
}

func (p *Preview) togglePause() {
	switch p.ctrl.State() {
	case animation.StateRunning:
		p.ctrl.Pause()
	case animation.StatePaused:
		p.ctrl.Resume()
	}
	p.requestRedraw()
}

func (p *Preview) requestRedraw() {
	select {
	case p.redraw <- struct{}{}:
	default:
	}
}

func (p *Preview) draw() {
	p.ctrl.Render(p.surface)
	p.drawStatus()
	p.screen.Show()
}

func (p *Preview) drawStatus() {
	cols, rows := p.screen.Size()
	if rows == 0 {
		return
	}
	slide := p.car.Current()
	line := fmt.Sprintf(" %s  %d/%d %s  [%s]  space pause  ←/→ slides  q quit",
		p.org, p.car.Index()+1, p.car.Len(), slide.Caption, p.ctrl.State())

	style := tcell.StyleDefault.Reverse(true)
	y := rows - 1
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		p.screen.SetContent(x, y, ' ', nil, style)
	}
}

// viewport converts the screen size to field pixels, leaving the last row
// for the status line.
func (p *Preview) viewport() animation.Viewport {
	cols, rows := p.screen.Size()
	return animation.Viewport{
		Width:  float64(cols) * CellWidth,
		Height: float64(fieldRows(rows)) * CellHeight,
		Touch:  p.touch,
	}
}

func fieldRows(rows int) int {
	if rows <= 1 {
		return 0
	}
	return rows - 1
}
