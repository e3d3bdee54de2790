// Package content holds the copy, links and imagery rendered by the site.
//
// Built-in defaults are always available; a YAML file overrides any key it
// sets. Lists in the file replace the default list wholesale.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/hopehaven/internal/carousel"
	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
)

// NavItem is a navigation bar entry. Variant "warning" renders as a button.
type NavItem struct {
	Name    string `yaml:"name" json:"name"`
	Href    string `yaml:"href" json:"href"`
	Variant string `yaml:"variant,omitempty" json:"variant,omitempty"`
}

// Stat is one hero counter.
type Stat struct {
	Value  int    `yaml:"value" json:"value"`
	Suffix string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Label  string `yaml:"label" json:"label"`
}

// Display renders the counter the way the hero shows it.
func (s Stat) Display() string {
	return fmt.Sprintf("%d%s", s.Value, s.Suffix)
}

// Feature is one of the about section highlights.
type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Color       string `yaml:"color" json:"color"`
	Icon        string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Project is a showcase card.
type Project struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Impact      string `yaml:"impact" json:"impact"`
	Image       string `yaml:"image" json:"image"`
	Status      string `yaml:"status" json:"status"`
	Location    string `yaml:"location" json:"location"`
	Icon        string `yaml:"icon" json:"icon"`
	Color       string `yaml:"color" json:"color"`
}

// Link is a plain labelled hyperlink.
type Link struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

// ContactInfo is the postal, phone and email block of the contact section.
type ContactInfo struct {
	Address []string `yaml:"address" json:"address"`
	Phone   []string `yaml:"phone" json:"phone"`
	Email   []string `yaml:"email" json:"email"`
}

// Hero is the banner copy.
type Hero struct {
	Title     string `yaml:"title" json:"title"`
	Subtitle  string `yaml:"subtitle" json:"subtitle"`
	Image     string `yaml:"image" json:"image"`
	Stats     []Stat `yaml:"stats" json:"stats"`
	Primary   Link   `yaml:"primary" json:"primary"`
	Secondary Link   `yaml:"secondary" json:"secondary"`
}

// About is the mission section.
type About struct {
	Heading  string           `yaml:"heading" json:"heading"`
	Mission  []string         `yaml:"mission" json:"mission"`
	Features []Feature        `yaml:"features" json:"features"`
	Slides   []carousel.Slide `yaml:"slides" json:"slides"`
}

// Footer is the footer copy.
type Footer struct {
	Tagline      string `yaml:"tagline" json:"tagline"`
	SocialLinks  []Link `yaml:"social" json:"social"`
	QuickLinks   []Link `yaml:"quick_links" json:"quick_links"`
	ContactEmail string `yaml:"contact_email" json:"contact_email"`
	ContactPhone string `yaml:"contact_phone" json:"contact_phone"`
	Copyright    string `yaml:"copyright" json:"copyright"`
}

// Content is everything the page renders.
type Content struct {
	Brand    string      `yaml:"brand" json:"brand"`
	Org      string      `yaml:"org" json:"org"`
	Nav      []NavItem   `yaml:"nav" json:"nav"`
	Hero     Hero        `yaml:"hero" json:"hero"`
	About    About       `yaml:"about" json:"about"`
	Projects []Project   `yaml:"projects" json:"projects"`
	Contact  ContactInfo `yaml:"contact" json:"contact"`
	Footer   Footer      `yaml:"footer" json:"footer"`
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the content is renderable.
func (c *Content) Validate() error {
	if strings.TrimSpace(c.Brand) == "" {
		return invalid("brand is required")
	}
	if len(c.Nav) == 0 {
		return invalid("at least one nav item is required")
	}
	for i, item := range c.Nav {
		if item.Name == "" || item.Href == "" {
			return invalid(fmt.Sprintf("nav[%d] needs a name and href", i))
		}
	}
	if c.Hero.Title == "" {
		return invalid("hero.title is required")
	}
	for i, s := range c.Hero.Stats {
		if s.Value < 0 {
			return invalid(fmt.Sprintf("hero.stats[%d] must not be negative", i))
		}
	}
	if len(c.About.Slides) == 0 {
		return invalid("about.slides needs at least one slide")
	}
	for i, s := range c.About.Slides {
		if s.Src == "" || s.Alt == "" {
			return invalid(fmt.Sprintf("about.slides[%d] needs src and alt text", i))
		}
	}
	for i, f := range c.About.Features {
		if f.Color != "" && !colorPattern.MatchString(f.Color) {
			return invalid(fmt.Sprintf("about.features[%d].color %q is not a hex colour", i, f.Color))
		}
	}
	for i, p := range c.Projects {
		if p.Title == "" {
			return invalid(fmt.Sprintf("projects[%d].title is required", i))
		}
		if p.Color != "" && !colorPattern.MatchString(p.Color) {
			return invalid(fmt.Sprintf("projects[%d].color %q is not a hex colour", i, p.Color))
		}
	}
	return nil
}

func invalid(msg string) error {
	return siteerrors.NewConfigError(siteerrors.CodeInvalidContent, msg, nil)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Content, error) {
	c := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, siteerrors.NewConfigError(siteerrors.CodeInvalidContent, "content is not valid YAML", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a content file. An empty path returns the defaults.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, siteerrors.NewIOError(siteerrors.CodeContentRead, "failed to read content file", err).
			WithContext("path", path)
	}

	c, err := Parse(data)
	if err != nil {
		var se *siteerrors.SiteError
		if errors.As(err, &se) {
			return nil, se.WithContext("path", path)
		}
		return nil, err
	}
	return c, nil
}

// Carousel returns a new carousel over the about slides.
func (c *Content) Carousel() (*carousel.Carousel, error) {
	return carousel.New(c.About.Slides)
}
