package server

import (
	"context"
	"sync"

	"github.com/conneroisu/hopehaven/internal/logging"
)

// Hub tracks live sessions and fans out broadcast messages such as content
// reloads. Only the Run goroutine writes the map.
type Hub struct {
	log        logging.Logger
	register   chan registration
	unregister chan *Session
	broadcast  chan outbound
	done       chan struct{}

	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

// NewHub creates a hub; call Run to start it.
func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		log:        logger.WithComponent("hub"),
		register:   make(chan registration),
		unregister: make(chan *Session),
		broadcast:  make(chan outbound, 8),
		done:       make(chan struct{}),
		sessions:   make(map[*Session]struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx ends, then closes
// every remaining session.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for s := range h.sessions {
			s.Close()
			delete(h.sessions, s)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			h.mu.Lock()
			h.sessions[reg.session] = struct{}{}
			n := len(h.sessions)
			h.mu.Unlock()
			close(reg.added)
			h.log.Debug(ctx, "Session registered", "session", reg.session.ID(), "total", n)

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
			}
			n := len(h.sessions)
			h.mu.Unlock()
			h.log.Debug(ctx, "Session unregistered", "session", s.ID(), "total", n)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for s := range h.sessions {
				// A session too slow to take a control message is closed
				// rather than allowed to stall the hub.
				if !s.offer(msg) {
					h.log.Warn(ctx, nil, "Closing slow session", "session", s.ID(), "type", msg.env.Type)
					s.Close()
				}
			}
			h.mu.RUnlock()
		}
	}
}

type registration struct {
	session *Session
	added   chan struct{}
}

// Register adds s and returns once Count includes it. It returns false once
// the hub has stopped.
func (h *Hub) Register(s *Session) bool {
	reg := registration{session: s, added: make(chan struct{})}
	select {
	case h.register <- reg:
		<-reg.added
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes s. It never blocks after the hub has stopped.
func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Broadcast queues a message for every session.
func (h *Hub) Broadcast(typ string, payload interface{}) error {
	msg, err := newOutbound(typ, payload)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
	return nil
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
