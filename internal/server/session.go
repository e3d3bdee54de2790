package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/hopehaven/internal/animation"
	"github.com/conneroisu/hopehaven/internal/carousel"
	"github.com/conneroisu/hopehaven/internal/clock"
	"github.com/conneroisu/hopehaven/internal/config"
	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/particles"
)

// sendBuffer bounds queued outbound messages per session. Frames beyond it
// are dropped; the next frame supersedes them anyway.
const sendBuffer = 16

// SessionConfig is what a session needs to build its controller.
type SessionConfig struct {
	Animation config.AnimationConfig
	Slides    []carousel.Slide
	Clock     clock.Clock
	Source    func() particles.Source
	Logger    logging.Logger
}

// Session is one live /ws connection. It owns a particle field, a carousel
// and the controller driving both.
type Session struct {
	id   string
	conn *websocket.Conn
	cfg  SessionConfig
	log  logging.Logger

	send      chan outbound
	done      chan struct{}
	closeOnce sync.Once

	// ctrl is only touched by the read loop and by Serve after it returns.
	ctrl *animation.Controller

	dropped atomic.Uint64
}

func newSession(conn *websocket.Conn, cfg SessionConfig) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	id := uuid.NewString()
	return &Session{
		id:   id,
		conn: conn,
		cfg:  cfg,
		log:  cfg.Logger.WithComponent("session").With("session", id),
		send: make(chan outbound, sendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Dropped returns how many frames were discarded under backpressure.
func (s *Session) Dropped() uint64 {
	return s.dropped.Load()
}

// Close asks the session to end. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Serve runs the read and write pumps until the peer goes away, ctx ends or
// Close is called. The controller is stopped before Serve returns.
func (s *Session) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.readPump(gctx)
	})
	g.Go(func() error {
		return s.writePump(gctx)
	})
	err := g.Wait()

	if s.ctrl != nil {
		s.ctrl.Stop()
	}
	s.Close()
	return err
}

func (s *Session) readPump(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)

	for {
		var env Envelope
		if err := wsjson.Read(ctx, s.conn, &env); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		if err := s.handle(ctx, env); err != nil {
			s.log.Warn(ctx, err, "Rejected client message", "type", env.Type)
			s.reject(err)
		}
	}
}

func (s *Session) writePump(ctx context.Context) error {
	ticker := s.cfg.Clock.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-s.done:
			s.conn.Close(websocket.StatusGoingAway, "session closed")
			return nil

		case msg := <-s.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(writeCtx, s.conn, msg.env)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write %s: %w", msg.env.Type, err)
			}

		case <-ticker.C():
			pingCtx, cancel := context.WithTimeout(ctx, pongWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// enqueue queues msg for the writer. Frames are dropped when the queue is
// full; other messages wait for room unless the session is closing.
func (s *Session) enqueue(msg outbound) {
	if msg.frame {
		select {
		case s.send <- msg:
		case <-s.done:
		default:
			s.dropped.Add(1)
		}
		return
	}
	select {
	case s.send <- msg:
	case <-s.done:
	}
}

// offer queues msg without waiting. It reports false when the queue is full.
func (s *Session) offer(msg outbound) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.done:
		return true
	default:
		if msg.frame {
			s.dropped.Add(1)
		}
		return false
	}
}

func (s *Session) emit(typ string, payload interface{}) {
	msg, err := newOutbound(typ, payload)
	if err != nil {
		s.log.Error(context.Background(), err, "Failed to encode message", "type", typ)
		return
	}
	s.enqueue(msg)
}

func (s *Session) reject(err error) {
	out := ErrorMessage{Code: siteerrors.CodeInvalidMessage, Message: err.Error()}
	var se *siteerrors.SiteError
	if errors.As(err, &se) {
		out.Code = se.Code
		out.Message = se.Message
	}
	s.emit(TypeError, out)
}

func (s *Session) handle(ctx context.Context, env Envelope) error {
	switch env.Type {
	case TypeHello:
		var hello Hello
		if err := decode(env, &hello); err != nil {
			return err
		}
		return s.start(ctx, hello)

	case TypeResize:
		var rs Resize
		if err := decode(env, &rs); err != nil {
			return err
		}
		if err := s.requireStarted(); err != nil {
			return err
		}
		if rs.Width < 0 || rs.Height < 0 {
			return invalidMessage("viewport must not be negative")
		}
		s.ctrl.Resize(rs.Width, particles.CanvasHeight(rs.Height))
		return nil

	case TypeVisibility:
		var vis Visibility
		if err := decode(env, &vis); err != nil {
			return err
		}
		if err := s.requireStarted(); err != nil {
			return err
		}
		s.ctrl.SetVisible(!vis.Hidden)
		return nil

	case TypeCarousel:
		var cmd CarouselCommand
		if err := decode(env, &cmd); err != nil {
			return err
		}
		if err := s.requireStarted(); err != nil {
			return err
		}
		return s.navigate(cmd)

	default:
		return invalidMessage(fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func (s *Session) start(ctx context.Context, hello Hello) error {
	if s.ctrl != nil {
		return invalidMessage("session already started")
	}
	if hello.Width < 0 || hello.Height < 0 {
		return invalidMessage("viewport must not be negative")
	}

	var car *carousel.Carousel
	if len(s.cfg.Slides) > 0 {
		c, err := carousel.New(s.cfg.Slides)
		if err != nil {
			return err
		}
		// Resume on the slide the page was rendered with.
		if err := c.JumpTo(normalizeSlide(hello.Slide, c.Len())); err != nil {
			return err
		}
		c.OnChange(func(index int) {
			s.emit(TypeCarousel, CarouselIndex{Index: index})
		})
		car = c
	}

	var src particles.Source
	if s.cfg.Source != nil {
		src = s.cfg.Source()
	}
	anim := s.cfg.Animation
	reduced := anim.ReducedMotion || hello.ReducedMotion

	s.ctrl = animation.NewController(particles.NewField(src), car, animation.Options{
		FrameInterval:    anim.FrameInterval,
		AutoplayInterval: anim.AutoplayInterval,
		ResizeDebounce:   anim.ResizeDebounce,
		ReducedMotion:    reduced,
		Clock:            s.cfg.Clock,
		Logger:           s.log,
		OnFrame: func(snap particles.Snapshot) {
			msg, err := frameMessage(snap)
			if err != nil {
				return
			}
			s.enqueue(msg)
		},
	})

	interval := anim.FrameInterval
	if interval <= 0 {
		interval = animation.DefaultFrameInterval
	}
	s.emit(TypeWelcome, Welcome{
		Session:         s.id,
		FrameIntervalMs: interval.Milliseconds(),
		ReducedMotion:   reduced,
		Slides:          s.cfg.Slides,
		Index:           s.slideIndex(),
	})

	s.log.Info(ctx, "Live session started",
		"width", hello.Width, "height", hello.Height,
		"touch", hello.Touch, "reduced_motion", reduced)

	return s.ctrl.Start(ctx, animation.Viewport{
		Width:  hello.Width,
		Height: particles.CanvasHeight(hello.Height),
		Touch:  hello.Touch,
	})
}

func (s *Session) navigate(cmd CarouselCommand) error {
	car := s.ctrl.Carousel()
	if car == nil {
		return invalidMessage("no carousel in this session")
	}
	if cmd.Action == "jump" {
		return car.JumpTo(cmd.Index)
	}
	dir, err := carousel.ParseDirection(cmd.Action)
	if err != nil {
		return err
	}
	car.Advance(dir)
	return nil
}

func (s *Session) slideIndex() int {
	if car := s.ctrl.Carousel(); car != nil {
		return car.Index()
	}
	return 0
}

// normalizeSlide wraps i into [0, n) the same way the page does for ?slide=.
func normalizeSlide(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (s *Session) requireStarted() error {
	if s.ctrl == nil {
		return invalidMessage("send hello first")
	}
	return nil
}

func decode(env Envelope, v interface{}) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return invalidMessage(fmt.Sprintf("malformed %s payload", env.Type))
	}
	return nil
}

func invalidMessage(msg string) error {
	return siteerrors.NewValidationError(siteerrors.CodeInvalidMessage, msg)
}
