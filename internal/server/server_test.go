package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/hopehaven/internal/clock"
	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/forms"
	"github.com/conneroisu/hopehaven/internal/particles"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingSubmitter stores every submission and can be told to fail.
type recordingSubmitter struct {
	mu    sync.Mutex
	subs  []forms.Submission
	fails bool
}

func (r *recordingSubmitter) Submit(_ context.Context, s forms.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails {
		return errors.New("mail relay down")
	}
	r.subs = append(r.subs, s)
	return nil
}

func (r *recordingSubmitter) submissions() []forms.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]forms.Submission(nil), r.subs...)
}

type fixture struct {
	srv       *Server
	http      *httptest.Server
	clock     *clock.Fake
	submitter *recordingSubmitter
	store     *content.Store
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "site.css"), []byte("body{margin:0}"), 0o644))
	cfg.Server.StaticDir = static
	cfg.Animation.Seed = 42
	return cfg
}

func newFixture(t *testing.T, store *content.Store, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	if store == nil {
		store = content.NewStaticStore(content.Default())
	}

	f := &fixture{
		clock:     clock.NewFake(epoch),
		submitter: &recordingSubmitter{},
		store:     store,
	}
	srv, err := New(cfg, store, Options{Clock: f.clock, Submitter: f.submitter})
	require.NoError(t, err)
	f.srv = srv

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		srv.Hub().Run(ctx)
	}()

	f.http = httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		<-hubDone
		f.http.Close()
	})
	return f
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.http.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) post(t *testing.T, path string, form url.Values, accept string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.http.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func parseBody(t *testing.T, resp *http.Response) *html.Node {
	t.Helper()
	doc, err := html.Parse(resp.Body)
	require.NoError(t, err)
	return doc
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byID(doc *html.Node, id string) *html.Node {
	nodes := findAll(doc, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func byTag(doc *html.Node, tag string) []*html.Node {
	return findAll(doc, func(n *html.Node) bool { return n.Data == tag })
}

func TestNew_RequiresConfigAndStore(t *testing.T) {
	_, err := New(nil, content.NewStaticStore(content.Default()), Options{})
	assert.Error(t, err)

	_, err = New(testConfig(t), nil, Options{})
	assert.Error(t, err)
}

func TestIndex_RendersLivePage(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	doc := parseBody(t, resp)
	for _, id := range []string{"home", "about", "projects", "contact"} {
		assert.NotNil(t, byID(doc, id), "section %s", id)
	}
	assert.NotNil(t, byID(doc, "hero-canvas"))
	assert.NotEmpty(t, byTag(doc, "script"))

	body := byTag(doc, "body")[0]
	live, _ := attr(body, "data-live")
	assert.Equal(t, "true", live)
}

func TestIndex_ReducedMotionRendersStaticFrame(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.get(t, "/?motion=reduce")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseBody(t, resp)

	assert.Nil(t, byID(doc, "hero-canvas"))
	assert.Empty(t, byTag(doc, "script"))

	svgs := byTag(doc, "svg")
	require.NotEmpty(t, svgs)
	want := particles.Count(staticWidth, particles.CanvasHeight(staticInnerHeight), false)
	assert.Len(t, byTag(svgs[0], "circle"), want)
}

func TestIndex_ReducedMotionFromConfig(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) { c.Animation.ReducedMotion = true })

	doc := parseBody(t, f.get(t, "/"))
	assert.Nil(t, byID(doc, "hero-canvas"))
	assert.Empty(t, byTag(doc, "script"))
}

func TestIndex_TouchHalvesStaticParticles(t *testing.T) {
	f := newFixture(t, nil, nil)

	doc := parseBody(t, f.get(t, "/?motion=reduce&touch=1"))
	want := particles.Count(staticWidth, particles.CanvasHeight(staticInnerHeight), true)
	assert.Len(t, byTag(byTag(doc, "svg")[0], "circle"), want)
}

func TestIndex_SlideParameter(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		active string
	}{
		{name: "default", query: "", active: "0"},
		{name: "explicit", query: "?slide=2", active: "2"},
		{name: "wraps", query: "?slide=4", active: "1"},
		{name: "garbage", query: "?slide=abc", active: "0"},
	}

	f := newFixture(t, nil, nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseBody(t, f.get(t, "/"+tc.query))
			figures := findAll(doc, func(n *html.Node) bool {
				_, ok := attr(n, "data-index")
				return ok && n.Data == "figure"
			})
			require.Len(t, figures, 3)
			for _, fig := range figures {
				idx, _ := attr(fig, "data-index")
				_, hidden := attr(fig, "hidden")
				assert.Equal(t, idx != tc.active, hidden, "slide %s", idx)
			}
		})
	}
}

func TestIndex_UnknownPathIsNotFound(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/nope").StatusCode)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Version)
	assert.True(t, health.Timestamp.Equal(epoch))
	assert.EqualValues(t, 0, health.Checks["live_sessions"])
	assert.Equal(t, "ok", health.Checks["content"])
}

func TestNewsletter(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		fails    bool
		status   int
		contains string
	}{
		{name: "invalid email", email: "not-an-email", status: http.StatusUnprocessableEntity, contains: forms.InvalidEmailMessage},
		{name: "valid email", email: "friend@example.org", status: http.StatusOK, contains: "Thanks, you&#39;re subscribed!"},
		{name: "submit failure", email: "friend@example.org", fails: true, status: http.StatusInternalServerError, contains: "Something went wrong"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			f.submitter.fails = tc.fails

			resp := f.post(t, "/newsletter", url.Values{"email": {tc.email}}, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), tc.contains)
		})
	}
}

func TestNewsletter_InvalidEmailKeepsValue(t *testing.T) {
	f := newFixture(t, nil, nil)

	doc := parseBody(t, f.post(t, "/newsletter", url.Values{"email": {"not-an-email"}}, ""))
	input := byID(doc, "newsletter")
	require.NotNil(t, input)
	v, _ := attr(input, "value")
	assert.Equal(t, "not-an-email", v)
}

func TestNewsletter_JSON(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.post(t, "/newsletter", url.Values{"email": {" friend@example.org "}}, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state forms.NewsletterState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, forms.StatusSuccess, state.Status)
	assert.Empty(t, state.Email)

	subs := f.submitter.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, forms.KindNewsletter, subs[0].Kind)
	assert.Equal(t, "friend@example.org", subs[0].Fields["email"])
}

func TestContact_JSON(t *testing.T) {
	valid := url.Values{
		"name":     {"Ama Mensah"},
		"email":    {"ama@example.org"},
		"interest": {string(forms.InterestVolunteer)},
		"message":  {"I would like to help on weekends."},
	}

	t.Run("invalid fields", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		resp := f.post(t, "/contact", url.Values{"email": {"nope"}}, "application/json")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var out ContactResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.False(t, out.Sent)
		assert.Equal(t, forms.InvalidEmailMessage, out.Errors["email"])
		assert.Contains(t, out.Errors, "name")
		assert.Contains(t, out.Errors, "message")
		assert.Empty(t, f.submitter.submissions())
	})

	t.Run("valid", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		resp := f.post(t, "/contact", valid, "application/json")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out ContactResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Sent)
		assert.NotEmpty(t, out.ID)

		subs := f.submitter.submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, out.ID, subs[0].ID)
		assert.Equal(t, "Ama Mensah", subs[0].Fields["name"])
	})

	t.Run("submit failure", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.submitter.fails = true

		resp := f.post(t, "/contact", valid, "application/json")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestContact_HTMLShowsInlineErrors(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.post(t, "/contact", url.Values{"name": {"Kofi"}, "email": {"bad"}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc := parseBody(t, resp)
	email := byID(doc, "contact-email")
	require.NotNil(t, email)
	invalid, _ := attr(email, "aria-invalid")
	assert.Equal(t, "true", invalid)

	name := byID(doc, "contact-name")
	require.NotNil(t, name)
	v, _ := attr(name, "value")
	assert.Equal(t, "Kofi", v)
}

func TestPost_RejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, nil, nil)

	req, err := http.NewRequest(http.MethodPost, f.http.URL+"/newsletter",
		strings.NewReader(url.Values{"email": {"a@b.co"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://evil.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, f.submitter.submissions())
}

func TestCORS_AllowedOrigin(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Server.AllowedOrigins = []string{"https://hopehaven.org"}
	})

	req, err := http.NewRequest(http.MethodOptions, f.http.URL+"/newsletter", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://hopehaven.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://hopehaven.org", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.get(t, "/")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	csp := resp.Header.Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "connect-src 'self' ws: wss:")
}

func TestStatic(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.get(t, "/static/site.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{margin:0}", readBody(t, resp))

	assert.Equal(t, http.StatusNotFound, f.get(t, "/static/missing.css").StatusCode)
}

func TestWantsJSON(t *testing.T) {
	testCases := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"text/html", false},
		{"application/json", true},
		{"text/html, application/json;q=0.9", true},
	}
	for _, tc := range testCases {
		r := httptest.NewRequest(http.MethodPost, "/contact", nil)
		r.Header.Set("Accept", tc.accept)
		assert.Equal(t, tc.want, wantsJSON(r), tc.accept)
	}
}

func TestServe_ShutsDownWithContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.ShutdownGrace = time.Second
	srv, err := New(cfg, content.NewStaticStore(content.Default()), Options{})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
