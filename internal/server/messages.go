package server

import (
	"encoding/json"

	"github.com/conneroisu/hopehaven/internal/carousel"
	"github.com/conneroisu/hopehaven/internal/particles"
)

// Message types exchanged over /ws.
const (
	TypeHello      = "hello"
	TypeResize     = "resize"
	TypeVisibility = "visibility"
	TypeCarousel   = "carousel"

	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeReload  = "reload"
	TypeError   = "error"
)

// Envelope is the wire form of every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hello opens a live session.
type Hello struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Touch         bool    `json:"touch"`
	ReducedMotion bool    `json:"reducedMotion"`
	// Slide is the carousel index the page was rendered with.
	Slide int `json:"slide"`
}

// Resize reports a new viewport. Height is the window's inner height; the
// canvas height is derived server side.
type Resize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Visibility reports the page visibility.
type Visibility struct {
	Hidden bool `json:"hidden"`
}

// CarouselCommand navigates the carousel. Action is next, previous or jump.
type CarouselCommand struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// Welcome acknowledges hello.
type Welcome struct {
	Session         string           `json:"session"`
	FrameIntervalMs int64            `json:"frameIntervalMs"`
	ReducedMotion   bool             `json:"reducedMotion"`
	Slides          []carousel.Slide `json:"slides"`
	Index           int              `json:"index"`
}

// CarouselIndex announces the visible slide.
type CarouselIndex struct {
	Index int `json:"index"`
}

// ErrorMessage reports a rejected client message. The session stays open.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// outbound is a server message with its kind remembered so frames can be
// dropped under backpressure while control messages are not.
type outbound struct {
	env   Envelope
	frame bool
}

func newOutbound(typ string, payload interface{}) (outbound, error) {
	out := outbound{env: Envelope{Type: typ}, frame: typ == TypeFrame}
	if payload == nil {
		return out, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	out.env.Data = data
	return out, nil
}

func frameMessage(snap particles.Snapshot) (outbound, error) {
	return newOutbound(TypeFrame, snap)
}
