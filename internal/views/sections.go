package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/conneroisu/hopehaven/internal/content"
	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/forms"
	"github.com/conneroisu/hopehaven/internal/particles"
)

// Navbar renders the fixed top navigation. On narrow screens the links
// collapse behind a checkbox toggle, which needs no script.
func Navbar(c *content.Content) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<nav class="navbar fixed-top" aria-label="Main navigation"><div class="container">`)
		h.raw(`<a class="navbar-brand" href="#home">`)
		h.text(c.Brand)
		h.raw(`</a>`)
		h.raw(`<input type="checkbox" id="nav-toggle" class="nav-toggle" aria-label="Toggle navigation" aria-controls="nav-menu">`)
		h.raw(`<label for="nav-toggle" class="navbar-toggler" aria-hidden="true"><span class="navbar-toggler-icon"></span></label>`)
		h.raw(`<ul id="nav-menu" class="nav-links">`)
		for _, item := range c.Nav {
			h.raw(`<li><a`)
			h.url("href", item.Href)
			if item.Variant != "" {
				h.attr("class", "btn btn-"+item.Variant)
			} else {
				h.attr("class", "nav-link")
			}
			h.raw(">")
			h.text(item.Name)
			h.raw("</a></li>")
		}
		h.raw(`</ul></div></nav>`)
		return h.err
	})
}

// FrameRenderer draws a particle frame. *particles.Field and
// *animation.Controller both qualify.
type FrameRenderer interface {
	Render(surface particles.Surface)
}

// HeroState selects how the hero background is drawn.
type HeroState struct {
	// Static, when set, is drawn once as inline SVG for reduced motion.
	// Otherwise the hero carries a canvas that the live session draws into.
	Static FrameRenderer
}

// Hero renders the banner with stats, calls to action and particles.
func Hero(c *content.Content, state HeroState) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<section id="home" class="hero-section"`)
		h.attr("aria-label", "Hero section - "+c.Hero.Title)
		if c.Hero.Image != "" {
			h.attr("style", "background-image: url('"+string(templ.URL(c.Hero.Image))+"')")
		}
		h.raw(">")

		if state.Static != nil {
			svg := &SVGSurface{}
			state.Static.Render(svg)
			h.raw(svg.String())
		} else {
			h.raw(`<canvas id="hero-canvas" class="hero-particles" aria-hidden="true"></canvas>`)
		}
		h.raw(`<div class="hero-overlay" aria-hidden="true"></div>`)

		h.raw(`<div class="container hero-content">`)
		h.element("h1", "hero-title", c.Hero.Title)
		h.element("p", "hero-subtitle", c.Hero.Subtitle)

		h.raw(`<div class="stats">`)
		for _, s := range c.Hero.Stats {
			h.raw(`<div class="stat-card">`)
			h.element("h2", "stat-number", s.Display())
			h.element("p", "stat-label", s.Label)
			h.raw(`</div>`)
		}
		h.raw(`</div><div class="cta">`)
		for i, link := range []content.Link{c.Hero.Primary, c.Hero.Secondary} {
			if link.Label == "" {
				continue
			}
			class := "btn btn-warning btn-glow"
			if i > 0 {
				class = "btn btn-outline-light"
			}
			h.raw(`<a role="button"`)
			h.attr("class", class)
			h.url("href", link.Href)
			h.raw(">")
			h.text(link.Label)
			h.raw(`</a>`)
		}
		h.raw(`</div></div></section>`)
		return h.err
	})
}

// About renders the mission, features and the image carousel positioned on
// slide. Controls are plain links so they work without script.
func About(c *content.Content, slide int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		slides := c.About.Slides
		n := len(slides)
		if n > 0 {
			slide = ((slide % n) + n) % n
		}

		h.raw(`<section id="about" class="about-section" aria-labelledby="about-heading"><div class="container">`)
		h.raw(`<h1 id="about-heading" class="about-title">`)
		h.text(c.About.Heading)
		h.raw(`</h1>`)
		for i, p := range c.About.Mission {
			class := "about-text"
			if i == 0 {
				class = "about-lead"
			}
			h.element("p", class, p)
		}

		h.raw(`<div class="features-grid">`)
		for _, f := range c.About.Features {
			h.raw(`<div class="feature-card"`)
			if f.Color != "" {
				h.attr("style", "--feature-color: "+f.Color)
			}
			h.raw(">")
			if f.Icon != "" {
				h.element("span", "feature-icon", f.Icon)
			}
			h.element("h5", "feature-title", f.Title)
			h.element("p", "feature-desc", f.Description)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)

		h.raw(`<div id="about-carousel" class="carousel" aria-roledescription="carousel"`)
		h.attr("data-index", strconv.Itoa(slide))
		h.raw(">")
		for i, s := range slides {
			h.raw(`<figure`)
			h.attr("class", classes("carousel-item", activeClass(i == slide)))
			h.attr("data-index", strconv.Itoa(i))
			if i != slide {
				h.raw(" hidden")
			}
			h.raw(`><img`)
			h.url("src", s.Src)
			h.attr("alt", s.Alt)
			h.raw(` loading="lazy">`)
			if s.Caption != "" {
				h.element("figcaption", "carousel-caption", s.Caption)
			}
			h.raw(`</figure>`)
		}
		if n > 1 {
			h.raw(`<a class="carousel-control prev" aria-label="Previous image"`)
			h.attr("href", "?slide="+strconv.Itoa((slide-1+n)%n)+"#about")
			h.raw(` data-action="previous">&lsaquo;</a>`)
			h.raw(`<a class="carousel-control next" aria-label="Next image"`)
			h.attr("href", "?slide="+strconv.Itoa((slide+1)%n)+"#about")
			h.raw(` data-action="next">&rsaquo;</a>`)
			h.raw(`<div class="carousel-indicators">`)
			for i := range slides {
				h.raw(`<a`)
				h.attr("class", classes("indicator", activeClass(i == slide)))
				h.attr("href", "?slide="+strconv.Itoa(i)+"#about")
				h.attr("aria-label", "Go to slide "+strconv.Itoa(i+1))
				h.attr("data-index", strconv.Itoa(i))
				if i == slide {
					h.raw(` aria-current="true"`)
				}
				h.raw(`></a>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`</div></div></section>`)
		return h.err
	})
}

func activeClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}

// Projects renders the showcase grid.
func Projects(c *content.Content) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<section id="projects" class="projects-section"><div class="container">`)
		h.element("h2", "section-title", "Sacred Initiatives")
		h.element("p", "section-lead", "Weaving ancient wisdom with modern hope across continents")
		h.raw(`<div class="project-grid">`)
		for _, p := range c.Projects {
			h.raw(`<article class="project-card"`)
			if p.Color != "" {
				h.attr("style", "--project-color: "+p.Color)
			}
			h.raw(">")
			if p.Image != "" {
				h.raw(`<img class="project-image"`)
				h.url("src", p.Image)
				h.attr("alt", p.Title)
				h.raw(` loading="lazy">`)
			}
			h.raw(`<div class="project-body">`)
			if p.Status != "" {
				h.element("span", "badge project-status", p.Status)
			}
			h.raw(`<h3 class="project-title">`)
			if p.Icon != "" {
				h.element("span", "project-icon", p.Icon)
				h.raw(" ")
			}
			h.text(p.Title)
			h.raw(`</h3>`)
			h.element("p", "project-desc", p.Description)
			if p.Impact != "" {
				h.element("p", "project-impact", p.Impact)
			}
			if p.Location != "" {
				h.element("p", "project-location", p.Location)
			}
			h.raw(`</div></article>`)
		}
		h.raw(`</div></div></section>`)
		return h.err
	})
}

// ContactState is what the contact section shows after a submission.
type ContactState struct {
	Form   forms.ContactForm
	Errors siteerrors.FieldErrors
	Sent   bool
}

// Contact renders the contact form and the organisation's contact details.
func Contact(c *content.Content, state ContactState) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<section id="contact" class="contact-section"><div class="container">`)
		h.element("h2", "section-title", "Get Involved")
		if state.Sent {
			h.raw(`<div class="alert alert-success" role="status">Thank you! We'll be in touch soon.</div>`)
		}

		h.raw(`<form class="contact-form" method="post" action="/contact#contact" novalidate>`)
		input := func(name, label, kind, value, placeholder string) {
			h.raw(`<div class="field"><label`)
			h.attr("for", "contact-"+name)
			h.raw(">")
			h.text(label)
			h.raw(`</label><input`)
			h.attr("id", "contact-"+name)
			h.attr("name", name)
			h.attr("type", kind)
			h.attr("value", value)
			h.attr("placeholder", placeholder)
			h.raw(" required")
			fieldError(h, state.Errors, name)
		}
		input("name", "Full Name", "text", state.Form.Name, "Enter your name")
		input("email", "Email Address", "email", state.Form.Email, "Enter your email")

		h.raw(`<div class="field"><label for="contact-interest">I'm interested in</label>`)
		h.raw(`<select id="contact-interest" name="interest">`)
		h.raw(`<option value="">`)
		h.text(forms.InterestNone.Label())
		h.raw(`</option>`)
		for _, i := range forms.Interests {
			h.raw(`<option`)
			h.attr("value", string(i))
			if i == state.Form.Interest {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(i.Label())
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
		if msg := state.Errors.Message("interest"); msg != "" {
			h.element("div", "invalid-feedback", msg)
		}
		h.raw(`</div>`)

		h.raw(`<div class="field"><label for="contact-message">Message</label>`)
		h.raw(`<textarea id="contact-message" name="message" rows="5" placeholder="Tell us how you'd like to help..." required>`)
		h.text(state.Form.Message)
		h.raw(`</textarea>`)
		if msg := state.Errors.Message("message"); msg != "" {
			h.element("div", "invalid-feedback", msg)
		}
		h.raw(`</div>`)
		h.raw(`<button type="submit" class="btn btn-warning">Send Message</button></form>`)

		h.raw(`<div class="contact-info">`)
		for _, block := range []struct {
			title string
			lines []string
		}{
			{"Visit Us", c.Contact.Address},
			{"Call Us", c.Contact.Phone},
			{"Email Us", c.Contact.Email},
		} {
			if len(block.lines) == 0 {
				continue
			}
			h.raw(`<div class="contact-block">`)
			h.element("h5", "", block.title)
			h.raw(`<p>`)
			for i, line := range block.lines {
				if i > 0 {
					h.raw(`<br>`)
				}
				h.text(line)
			}
			h.raw(`</p></div>`)
		}
		h.raw(`</div></div></section>`)
		return h.err
	})
}

// fieldError closes an input and appends its inline message.
func fieldError(h *htmlWriter, errs siteerrors.FieldErrors, name string) {
	msg := errs.Message(name)
	if msg != "" {
		h.raw(` aria-invalid="true"`)
	}
	h.raw(">")
	if msg != "" {
		h.element("div", "invalid-feedback", msg)
	}
	h.raw(`</div>`)
}

// Footer renders the footer with the newsletter signup.
func Footer(c *content.Content, newsletter forms.NewsletterState, year int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<footer class="site-footer" aria-labelledby="footer-heading"><div class="container">`)
		h.raw(`<h2 id="footer-heading" class="visually-hidden">Footer</h2>`)

		h.raw(`<div class="brand">`)
		h.element("div", "logo", c.Org)
		h.element("p", "tag", c.Footer.Tagline)
		h.raw(`<div class="social" aria-label="Social media links">`)
		for _, l := range c.Footer.SocialLinks {
			h.raw(`<a class="social-link"`)
			h.url("href", l.Href)
			h.attr("aria-label", l.Label)
			h.raw(">")
			h.text(l.Label)
			h.raw(`</a>`)
		}
		h.raw(`</div></div>`)

		h.raw(`<nav aria-label="Footer quick links">`)
		h.element("h6", "section-title", "Quick Links")
		h.raw(`<ul>`)
		for _, l := range c.Footer.QuickLinks {
			h.raw(`<li><a`)
			h.url("href", l.Href)
			h.raw(">")
			h.text(l.Label)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></nav>`)

		h.raw(`<div class="newsletter">`)
		h.element("h6", "section-title", "Stay in the loop")
		h.raw(`<form id="newsletter-form" method="post" action="/newsletter#newsletter" novalidate>`)
		h.raw(`<input id="newsletter" name="email" type="email" placeholder="Email address" aria-label="Email address"`)
		h.attr("value", newsletter.Email)
		h.raw(`><button type="submit" class="btn btn-warning" aria-label="Subscribe"`)
		if newsletter.Status == forms.StatusSending {
			h.raw(` disabled>Sending…`)
		} else {
			h.raw(`>Join`)
		}
		h.raw(`</button></form>`)
		switch newsletter.Status {
		case forms.StatusSuccess:
			h.element("div", "subscribe-msg success", newsletter.Message)
		case forms.StatusError:
			h.raw(`<div class="subscribe-msg error" role="alert">`)
			h.text(newsletter.Message)
			h.raw(`</div>`)
		}
		if c.Footer.ContactEmail != "" {
			h.raw(`<div class="contact"><a class="contact-link"`)
			h.url("href", "mailto:"+c.Footer.ContactEmail)
			h.raw(">")
			h.text(c.Footer.ContactEmail)
			h.raw(`</a>`)
			if c.Footer.ContactPhone != "" {
				h.element("div", "muted small", "Phone: "+c.Footer.ContactPhone)
			}
			h.raw(`</div>`)
		}
		h.raw(`</div>`)

		h.raw(`<small class="copyright">© `)
		h.text(strconv.Itoa(year) + " " + c.Footer.Copyright)
		h.raw(`</small><a class="back-top" href="#home" aria-label="Back to top">↑</a>`)
		h.raw(`</div></footer>`)
		return h.err
	})
}
