package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/particles"
)

var desktopHello = Hello{Width: 1280, Height: 800}

func (f *fixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
}

func (f *fixture) dial(t *testing.T, origin string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, f.wsURL(), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {origin}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, Envelope{Type: typ, Data: data}))
}

// readUntil reads messages until one of type typ arrives, skipping frames
// and anything else in between.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, out interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var env Envelope
		require.NoError(t, wsjson.Read(ctx, conn, &env))
		if env.Type != typ {
			continue
		}
		if out != nil {
			require.NoError(t, json.Unmarshal(env.Data, out))
		}
		return
	}
}

// start sends hello and waits for welcome plus the controller's tickers.
func (f *fixture) start(t *testing.T, conn *websocket.Conn, hello Hello, tickers int) Welcome {
	t.Helper()
	send(t, conn, TypeHello, hello)

	var welcome Welcome
	readUntil(t, conn, TypeWelcome, &welcome)
	require.Eventually(t, func() bool {
		return f.clock.ActiveTickers() == tickers
	}, 2*time.Second, 5*time.Millisecond)
	return welcome
}

// ping ticker, frame loop, autoplay
const liveTickers = 3

func TestWebSocket_StreamsFrames(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)

	welcome := f.start(t, conn, desktopHello, liveTickers)
	assert.NotEmpty(t, welcome.Session)
	assert.EqualValues(t, 16, welcome.FrameIntervalMs)
	assert.False(t, welcome.ReducedMotion)
	assert.Len(t, welcome.Slides, len(content.Default().About.Slides))

	f.clock.Advance(16 * time.Millisecond)

	var frame particles.Snapshot
	readUntil(t, conn, TypeFrame, &frame)
	assert.Equal(t, 1280.0, frame.Width)
	assert.Equal(t, particles.CanvasHeight(800), frame.Height)
	assert.Len(t, frame.Particles, particles.Count(1280, particles.CanvasHeight(800), false))
	for _, p := range frame.Particles {
		assert.True(t, p.X >= 0 && p.X <= frame.Width, "x=%v", p.X)
		assert.True(t, p.Y >= 0 && p.Y <= frame.Height, "y=%v", p.Y)
	}
	assert.Equal(t, 1, f.srv.Hub().Count())
}

func TestWebSocket_ReducedMotionSendsOneStaticFrame(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)

	hello := desktopHello
	hello.ReducedMotion = true
	welcome := f.start(t, conn, hello, 1)
	assert.True(t, welcome.ReducedMotion)

	var frame particles.Snapshot
	readUntil(t, conn, TypeFrame, &frame)
	assert.NotEmpty(t, frame.Particles)

	// Only the ping ticker runs.
	f.clock.Advance(10 * time.Second)
	assert.Equal(t, 1, f.clock.ActiveTickers())
}

func TestWebSocket_ReducedMotionFromConfig(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) { c.Animation.ReducedMotion = true })
	conn := f.dial(t, f.http.URL)

	welcome := f.start(t, conn, desktopHello, 1)
	assert.True(t, welcome.ReducedMotion)
}

func TestWebSocket_CarouselCommands(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	var idx CarouselIndex

	send(t, conn, TypeCarousel, CarouselCommand{Action: "next"})
	readUntil(t, conn, TypeCarousel, &idx)
	assert.Equal(t, 1, idx.Index)

	send(t, conn, TypeCarousel, CarouselCommand{Action: "previous"})
	readUntil(t, conn, TypeCarousel, &idx)
	assert.Equal(t, 0, idx.Index)

	send(t, conn, TypeCarousel, CarouselCommand{Action: "previous"})
	readUntil(t, conn, TypeCarousel, &idx)
	assert.Equal(t, 2, idx.Index)

	send(t, conn, TypeCarousel, CarouselCommand{Action: "jump", Index: 1})
	readUntil(t, conn, TypeCarousel, &idx)
	assert.Equal(t, 1, idx.Index)

	var errMsg ErrorMessage
	send(t, conn, TypeCarousel, CarouselCommand{Action: "jump", Index: 99})
	readUntil(t, conn, TypeError, &errMsg)
	assert.Equal(t, siteerrors.CodeIndexOutOfRange, errMsg.Code)
}

func TestWebSocket_AutoplayAdvances(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	f.clock.Advance(5 * time.Second)

	var idx CarouselIndex
	readUntil(t, conn, TypeCarousel, &idx)
	assert.Equal(t, 1, idx.Index)
}

func TestWebSocket_CarouselResumesRenderedSlide(t *testing.T) {
	tests := []struct {
		name      string
		slide     int
		wantStart int
		wantNext  int
	}{
		{name: "first", slide: 0, wantStart: 0, wantNext: 1},
		{name: "last", slide: 2, wantStart: 2, wantNext: 0},
		{name: "wraps past end", slide: 4, wantStart: 1, wantNext: 2},
		{name: "negative", slide: -1, wantStart: 2, wantNext: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			conn := f.dial(t, f.http.URL)

			hello := desktopHello
			hello.Slide = tt.slide
			welcome := f.start(t, conn, hello, liveTickers)
			assert.Equal(t, tt.wantStart, welcome.Index)

			// Autoplay continues from the rendered slide.
			f.clock.Advance(5 * time.Second)
			var idx CarouselIndex
			readUntil(t, conn, TypeCarousel, &idx)
			assert.Equal(t, tt.wantNext, idx.Index)
		})
	}
}

func TestWebSocket_VisibilityPausesAndResumes(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	send(t, conn, TypeVisibility, Visibility{Hidden: true})
	require.Eventually(t, func() bool { return f.clock.ActiveTickers() == 1 }, 2*time.Second, 5*time.Millisecond)

	send(t, conn, TypeVisibility, Visibility{Hidden: false})
	require.Eventually(t, func() bool { return f.clock.ActiveTickers() == liveTickers }, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocket_ResizeIsDebounced(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	send(t, conn, TypeResize, Resize{Width: 800, Height: 600})
	send(t, conn, TypeResize, Resize{Width: 640, Height: 1000})

	// Messages are handled in order, so the reply to a bad message means
	// both resizes have been applied.
	send(t, conn, "barrier", map[string]int{})
	readUntil(t, conn, TypeError, nil)
	assert.Equal(t, 1, f.clock.PendingTimers())

	f.clock.Advance(150 * time.Millisecond)

	// Frames queued before the resize may still arrive; wait for the new size.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		f.clock.Advance(16 * time.Millisecond)
		var env Envelope
		require.NoError(t, wsjson.Read(ctx, conn, &env))
		if env.Type != TypeFrame {
			continue
		}
		var frame particles.Snapshot
		require.NoError(t, json.Unmarshal(env.Data, &frame))
		if frame.Width == 640 {
			assert.Equal(t, particles.CanvasHeight(1000), frame.Height)
			return
		}
	}
}

func TestWebSocket_RejectsBadMessages(t *testing.T) {
	testCases := []struct {
		name    string
		typ     string
		payload interface{}
		code    string
	}{
		{name: "unknown type", typ: "dance", payload: map[string]int{}, code: siteerrors.CodeInvalidMessage},
		{name: "resize before hello", typ: TypeResize, payload: Resize{Width: 10, Height: 10}, code: siteerrors.CodeInvalidMessage},
		{name: "negative hello", typ: TypeHello, payload: Hello{Width: -1, Height: 10}, code: siteerrors.CodeInvalidMessage},
		{name: "malformed payload", typ: TypeHello, payload: "not an object", code: siteerrors.CodeInvalidMessage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			conn := f.dial(t, f.http.URL)

			send(t, conn, tc.typ, tc.payload)
			var errMsg ErrorMessage
			readUntil(t, conn, TypeError, &errMsg)
			assert.Equal(t, tc.code, errMsg.Code)
			assert.NotEmpty(t, errMsg.Message)

			// The session survives and still accepts hello.
			f.start(t, conn, desktopHello, liveTickers)
		})
	}
}

func TestWebSocket_DoubleHelloIsRejected(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	send(t, conn, TypeHello, desktopHello)
	var errMsg ErrorMessage
	readUntil(t, conn, TypeError, &errMsg)
	assert.Contains(t, errMsg.Message, "already started")
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, f.wsURL(), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {"https://evil.example"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocket_ConfiguredOriginIsAccepted(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Server.AllowedOrigins = []string{"https://hopehaven.org"}
	})
	conn := f.dial(t, "https://hopehaven.org")
	f.start(t, conn, desktopHello, liveTickers)
}

func TestWebSocket_ContentReloadIsBroadcast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	store, err := content.NewStore(path)
	require.NoError(t, err)

	f := newFixture(t, store, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	require.NoError(t, os.WriteFile(path, []byte("brand: Hope Haven Ghana\n"), 0o644))
	require.NoError(t, store.Reload())

	readUntil(t, conn, TypeReload, nil)
	assert.Equal(t, "Hope Haven Ghana", store.Get().Brand)
}

func TestWebSocket_CloseStopsSession(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })

	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)
	f.clock.Advance(16 * time.Millisecond)
	readUntil(t, conn, TypeFrame, nil)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	require.Eventually(t, func() bool {
		return f.srv.Hub().Count() == 0 && f.clock.ActiveTickers() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocket_HubShutdownClosesSessions(t *testing.T) {
	f := newFixture(t, nil, nil)
	conn := f.dial(t, f.http.URL)
	f.start(t, conn, desktopHello, liveTickers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := f.srv.Hub()

	// Closing every registered session is what the hub does on exit.
	hub.mu.RLock()
	for s := range hub.sessions {
		s.Close()
	}
	hub.mu.RUnlock()

	for {
		_, _, err := conn.Read(ctx)
		if err != nil {
			assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
			return
		}
	}
}
