package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/forms"
)

// PageData is everything needed to render the full page.
type PageData struct {
	Content    *content.Content
	Hero       HeroState
	Slide      int
	Contact    ContactState
	Newsletter forms.NewsletterState
	Year       int
	// Live adds the client script that opens the /ws session. It is off
	// under reduced motion.
	Live bool
	// Touch is forwarded to the live session so it sizes the field for
	// touch devices.
	Touch bool
}

// SectionIDs lists the section anchors in mount order.
var SectionIDs = []string{"home", "about", "projects", "contact"}

// Sections returns the page sections in their fixed mount order: Navbar,
// Hero, About, Projects, Contact, Footer.
func Sections(d PageData) []templ.Component {
	c := d.Content
	return []templ.Component{
		Navbar(c),
		Hero(c, d.Hero),
		About(c, d.Slide),
		Projects(c),
		Contact(c, d.Contact),
		Footer(c, d.Newsletter, d.Year),
	}
}

// Page renders the complete document.
func Page(d PageData) templ.Component {
	body := templ.Join(Sections(d)...)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(d.Content.Org + " | " + d.Content.Brand)
		h.raw(`</title><link rel="stylesheet" href="/static/site.css"><style>`, inlineCSS, `</style></head>`)
		h.raw(`<body`)
		if d.Live {
			h.raw(` data-live="true"`)
		}
		if d.Touch {
			h.raw(` data-touch="true"`)
		}
		h.raw(">")
		if h.err != nil {
			return h.err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		if d.Live {
			h.raw(`<script>`, liveScript, `</script>`)
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

const inlineCSS = `
.hero-section{position:relative;min-height:100vh;overflow:hidden;color:#fff;background-size:cover;background-position:center}
.hero-particles{position:absolute;inset:0;width:100%;height:100%;z-index:1;pointer-events:none}
.hero-overlay{position:absolute;inset:0;z-index:2;pointer-events:none;background:linear-gradient(45deg,rgba(106,17,203,.25) 0%,rgba(37,117,252,.18) 50%,rgba(255,193,7,.2) 100%)}
.hero-content{position:relative;z-index:3}
.carousel-item[hidden]{display:none}
.nav-toggle{position:absolute;opacity:0;width:1px;height:1px}
.navbar-toggler{display:none;cursor:pointer}
@media (max-width: 991px){.navbar-toggler{display:inline-block}.nav-links{display:none;flex-direction:column}.nav-toggle:checked ~ .nav-links{display:flex}}
.invalid-feedback,.subscribe-msg.error{color:#dc3545}
.subscribe-msg.success{color:#28a745}
@media (prefers-reduced-motion: reduce){*{transition:none!important;animation:none!important}}
`

// liveScript opens the animation session. The server owns the particle and
// carousel state; the browser only reports its viewport and draws frames.
const liveScript = `
(function(){
  if (window.matchMedia && window.matchMedia('(prefers-reduced-motion: reduce)').matches) return;
  var canvas = document.getElementById('hero-canvas');
  var ctx = canvas && canvas.getContext('2d');
  var touch = document.body.dataset.touch === 'true' || ('ontouchstart' in window);
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws');
  function height(){ return Math.max(window.innerHeight * 0.85, 500); }
  function send(type, data){ if (ws.readyState === 1) ws.send(JSON.stringify({type: type, data: data})); }
  function size(){ if (canvas){ canvas.width = window.innerWidth; canvas.height = height(); } }
  var about = document.getElementById('about-carousel');
  ws.onopen = function(){
    size();
    send('hello', {width: window.innerWidth, height: window.innerHeight, touch: touch, reducedMotion: false,
      slide: about ? Number(about.dataset.index) || 0 : 0});
  };
  ws.onmessage = function(ev){
    var msg = JSON.parse(ev.data);
    if (msg.type === 'frame' && ctx){
      var f = msg.data;
      ctx.clearRect(0, 0, canvas.width, canvas.height);
      for (var i = 0; i < f.particles.length; i++){
        var p = f.particles[i];
        ctx.globalAlpha = p.alpha;
        ctx.fillStyle = p.color;
        ctx.beginPath();
        ctx.arc(p.x, p.y, p.r, 0, Math.PI * 2);
        ctx.fill();
      }
      ctx.globalAlpha = 1;
    } else if (msg.type === 'carousel'){
      var idx = msg.data.index;
      document.querySelectorAll('#about-carousel .carousel-item').forEach(function(el){
        var on = Number(el.dataset.index) === idx;
        el.hidden = !on;
        el.classList.toggle('active', on);
      });
      document.querySelectorAll('#about-carousel .indicator').forEach(function(el){
        el.classList.toggle('active', Number(el.dataset.index) === idx);
      });
    } else if (msg.type === 'reload'){
      location.reload();
    }
  };
  var timer;
  window.addEventListener('resize', function(){
    size();
    clearTimeout(timer);
    timer = setTimeout(function(){ send('resize', {width: window.innerWidth, height: window.innerHeight}); }, 50);
  });
  document.addEventListener('visibilitychange', function(){ send('visibility', {hidden: document.hidden}); });
  document.querySelectorAll('#about-carousel [data-action]').forEach(function(el){
    el.addEventListener('click', function(e){ e.preventDefault(); send('carousel', {action: el.dataset.action}); });
  });
  document.querySelectorAll('#about-carousel .indicator').forEach(function(el){
    el.addEventListener('click', function(e){ e.preventDefault(); send('carousel', {action: 'jump', index: Number(el.dataset.index)}); });
  });
})();
`
