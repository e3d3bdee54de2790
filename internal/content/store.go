package content

import (
	"sync"
	"sync/atomic"
)

// Store holds the live content and notifies subscribers when it changes.
type Store struct {
	path    string
	current atomic.Pointer[Content]

	mu        sync.Mutex
	listeners []func(*Content)
}

// NewStore loads path, or the defaults when path is empty.
func NewStore(path string) (*Store, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path}
	s.current.Store(c)
	return s, nil
}

// NewStaticStore wraps c without a backing file.
func NewStaticStore(c *Content) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Get returns the current content. Callers must not mutate it.
func (s *Store) Get() *Content {
	return s.current.Load()
}

// Path returns the backing file, or "".
func (s *Store) Path() string {
	return s.path
}

// OnChange registers fn to run after every successful reload.
func (s *Store) OnChange(fn func(*Content)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the backing file. On error the previous content stays live.
func (s *Store) Reload() error {
	c, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(c)

	s.mu.Lock()
	listeners := make([]func(*Content), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return nil
}
