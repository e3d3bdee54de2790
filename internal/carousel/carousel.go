// Package carousel cycles the about-section images.
//
// A Carousel holds a fixed, ordered slide list and a single index that always
// stays in [0, Len()-1]. Navigation wraps in both directions. An Autoplay
// advances the carousel on a timer unless reduced motion was requested.
package carousel

import (
	"fmt"
	"strings"
	"sync"

	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
)

// Slide is one image with its caption.
type Slide struct {
	Src     string `yaml:"src" json:"src"`
	Alt     string `yaml:"alt" json:"alt"`
	Caption string `yaml:"caption" json:"caption"`
}

// Direction selects which neighbour Advance moves to.
type Direction int

const (
	Next Direction = iota
	Previous
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "unknown"
	}
}

// ParseDirection parses "next"/"previous" (also "prev").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next":
		return Next, nil
	case "previous", "prev":
		return Previous, nil
	default:
		return Next, siteerrors.NewValidationError(siteerrors.CodeInvalidMessage,
			fmt.Sprintf("unknown carousel direction %q", s))
	}
}

// ChangeFunc is called with the new index after every change.
type ChangeFunc func(index int)

// Carousel is safe for concurrent use.
type Carousel struct {
	mu        sync.RWMutex
	slides    []Slide
	index     int
	listeners []ChangeFunc
}

// New creates a carousel positioned on the first slide.
func New(slides []Slide) (*Carousel, error) {
	if len(slides) == 0 {
		return nil, siteerrors.NewValidationError(siteerrors.CodeEmptyCarousel, "carousel needs at least one slide")
	}
	owned := make([]Slide, len(slides))
	copy(owned, slides)
	return &Carousel{slides: owned}, nil
}

// OnChange registers fn to be notified of index changes.
func (c *Carousel) OnChange(fn ChangeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Advance moves one slide in direction d, wrapping at both ends, and returns
// the new index.
func (c *Carousel) Advance(d Direction) int {
	c.mu.Lock()
	n := len(c.slides)
	switch d {
	case Previous:
		c.index = (c.index - 1 + n) % n
	default:
		c.index = (c.index + 1) % n
	}
	index := c.index
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, index)
	return index
}

// JumpTo moves directly to index. Indices outside the slide list are
// rejected and leave the carousel unchanged.
func (c *Carousel) JumpTo(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.slides) {
		n := len(c.slides)
		c.mu.Unlock()
		return siteerrors.NewValidationError(siteerrors.CodeIndexOutOfRange,
			fmt.Sprintf("slide %d is outside [0, %d]", index, n-1)).
			WithContext("index", index)
	}
	c.index = index
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, index)
	return nil
}

func notify(listeners []ChangeFunc, index int) {
	for _, fn := range listeners {
		fn(index)
	}
}

// Index returns the current index.
func (c *Carousel) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Current returns the slide at the current index.
func (c *Carousel) Current() Slide {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slides[c.index]
}

// Len returns the number of slides.
func (c *Carousel) Len() int {
	return len(c.slides)
}

// Slides returns a copy of the slide list.
func (c *Carousel) Slides() []Slide {
	out := make([]Slide, len(c.slides))
	copy(out, c.slides)
	return out
}
