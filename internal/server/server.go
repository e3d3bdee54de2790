// Package server serves the site over HTTP and drives live animation
// sessions over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/hopehaven/internal/clock"
	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/forms"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/particles"
)

// Options carry the collaborators a Server can be given. Zero values select
// defaults.
type Options struct {
	Logger    logging.Logger
	Clock     clock.Clock
	Submitter forms.Submitter
}

// Server serves the page, the form endpoints and live sessions.
type Server struct {
	cfg       *config.Config
	store     *content.Store
	log       logging.Logger
	clock     clock.Clock
	submitter forms.Submitter
	contact   *forms.ContactHandler
	hub       *Hub
	started   time.Time

	originPatterns []string

	serverMutex  sync.RWMutex // Protects httpServer
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New creates a server for cfg serving the content held by store.
func New(cfg *config.Config, store *content.Store, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if store == nil {
		return nil, errors.New("server: nil content store")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	log := opts.Logger.WithComponent("server")
	if opts.Submitter == nil {
		opts.Submitter = forms.NewLogSubmitter(opts.Logger)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		log:       log,
		clock:     opts.Clock,
		submitter: opts.Submitter,
		contact:   forms.NewContactHandler(opts.Submitter),
		hub:       NewHub(opts.Logger),
		started:   opts.Clock.Now(),
	}
	s.originPatterns = s.allowedHosts()

	store.OnChange(func(*content.Content) {
		if err := s.hub.Broadcast(TypeReload, nil); err != nil {
			s.log.Error(context.Background(), err, "Failed to broadcast reload")
		}
	})
	return s, nil
}

// Hub returns the live session hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /contact", s.handleContact)
	mux.HandleFunc("POST /newsletter", s.handleNewsletter)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /static/", s.staticHandler())

	return s.addMiddleware(mux)
}

// Start listens on the configured address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down
// gracefully within the configured grace period.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.log.Info(ctx, "Server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownGrace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. Live sessions are closed when
// the hub stops with the serve context.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.log.Info(ctx, "Shutting down server")

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server == nil {
			return
		}
		if err := server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown: %w", err)
		}
	})

	return shutdownErr
}

// source returns a particle source for a new field. A configured seed makes
// every field identical, which keeps static frames stable between requests.
func (s *Server) source() particles.Source {
	if seed := s.cfg.Animation.Seed; seed != 0 {
		return particles.NewSource(seed)
	}
	return particles.NewSource(uint64(s.clock.Now().UnixNano()))
}
