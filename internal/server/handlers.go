package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/forms"
	"github.com/conneroisu/hopehaven/internal/particles"
	"github.com/conneroisu/hopehaven/internal/version"
	"github.com/conneroisu/hopehaven/internal/views"
)

// Viewport used for the static hero frame. The SVG scales to the real
// viewport with preserveAspectRatio.
const (
	staticWidth       = 1280
	staticInnerHeight = 800
)

// HealthResponse is the body served at /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
}

// ContactResponse is the JSON reply to POST /contact.
type ContactResponse struct {
	Sent   bool              `json:"sent"`
	ID     string            `json:"id,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.pageData(r), http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.store.Get()
	status := "healthy"
	contentCheck := "ok"
	if err := c.Validate(); err != nil {
		status = "degraded"
		contentCheck = err.Error()
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: s.clock.Now(),
		Version:   version.GetVersion(),
		Checks: map[string]interface{}{
			"content":        contentCheck,
			"content_path":   s.store.Path(),
			"live_sessions":  s.hub.Count(),
			"uptime_seconds": int64(s.clock.Now().Sub(s.started).Seconds()),
		},
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	result, err := s.contact.Handle(r.Context(), forms.ContactFromValues(r.PostForm))
	if err != nil {
		s.log.Error(r.Context(), err, "Contact submission failed")
		if wantsJSON(r) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Please try again."})
			return
		}
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !result.Sent {
		status = http.StatusUnprocessableEntity
	}

	if wantsJSON(r) {
		writeJSON(w, status, ContactResponse{
			Sent:   result.Sent,
			ID:     result.ID,
			Errors: fieldMessages(result.Errors),
		})
		return
	}

	d := s.pageData(r)
	d.Contact = views.ContactState{Form: result.Form, Errors: result.Errors, Sent: result.Sent}
	s.render(w, r, d, status)
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	state := forms.NewNewsletter(s.submitter).Subscribe(r.Context(), r.PostForm.Get("email"))

	status := http.StatusOK
	if state.Status == forms.StatusError {
		status = http.StatusUnprocessableEntity
		if state.Message != forms.InvalidEmailMessage {
			status = http.StatusInternalServerError
		}
	}

	if wantsJSON(r) {
		writeJSON(w, status, state)
		return
	}

	d := s.pageData(r)
	d.Newsletter = state
	s.render(w, r, d, status)
}

func (s *Server) staticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Server.StaticDir)))
}

// pageData builds the page for r. motion=reduce swaps the live canvas for a
// static frame, slide selects the visible About slide and touch=1 sizes the
// field for touch devices.
func (s *Server) pageData(r *http.Request) views.PageData {
	q := r.URL.Query()
	reduced := s.cfg.Animation.ReducedMotion || q.Get("motion") == "reduce"
	touch := q.Get("touch") == "1"

	d := views.PageData{
		Content:    s.store.Get(),
		Slide:      slideParam(q.Get("slide")),
		Newsletter: forms.NewsletterState{Status: forms.StatusIdle},
		Year:       s.clock.Now().Year(),
		Live:       !reduced,
		Touch:      touch,
	}
	if reduced {
		field := particles.NewField(s.source())
		field.Initialize(staticWidth, particles.CanvasHeight(staticInnerHeight), touch)
		d.Hero.Static = field
	}
	return d
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, d views.PageData, status int) {
	templ.Handler(views.Page(d),
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			s.log.Error(r.Context(), err, "Failed to render page", "path", r.URL.Path)
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}

func slideParam(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// wantsJSON reports whether the client asked for a JSON reply.
func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}

func fieldMessages(fe siteerrors.FieldErrors) map[string]string {
	if len(fe) == 0 {
		return nil
	}
	out := make(map[string]string, len(fe))
	for field := range fe {
		out[field] = fe.Message(field)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	response, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}
