package server

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Validate origin before accepting connection
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.log.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := s.store.Get()
	session := newSession(conn, SessionConfig{
		Animation: s.cfg.Animation,
		Slides:    c.About.Slides,
		Clock:     s.clock,
		Source:    s.source,
		Logger:    s.log,
	})

	if !s.hub.Register(session) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer s.hub.Unregister(session)

	if err := session.Serve(r.Context()); err != nil {
		s.log.Warn(r.Context(), err, "Live session ended with error", "session", session.ID())
		return
	}
	s.log.Debug(r.Context(), "Live session ended", "session", session.ID(), "dropped_frames", session.Dropped())
}

// checkOrigin validates the request origin for security
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Reject connections without origin header for security
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	// First check scheme - only allow http/https
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	// Same host as the request
	if originURL.Host == r.Host {
		return true
	}

	for _, allowed := range s.allowedHosts() {
		if originURL.Host == allowed {
			return true
		}
	}
	return false
}

// allowedHosts lists the host:port values accepted as WebSocket origins.
func (s *Server) allowedHosts() []string {
	port := s.cfg.Server.Port
	hosts := []string{
		fmt.Sprintf("%s:%d", s.cfg.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	for _, origin := range s.cfg.Server.AllowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
