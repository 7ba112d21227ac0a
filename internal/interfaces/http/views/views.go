// Package views renders the storefront's server-side HTML.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives. Data holds the page-specific part.
type Page struct {
	AppName   string
	Title     string
	Theme     string
	Path      string
	User      *session.UserSnapshot
	CartCount int
	Flash     *Flash
	Data      interface{}
}

// Flash is a transient, dismissible message shown once
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Flash kinds
const (
	FlashError   = "error"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Pager carries the links of a paginated listing
type Pager struct {
	Number     int
	TotalPages int
	FirstURL   string
	PrevURL    string
	NextURL    string
	LastURL    string
}

// NewPager builds page links on path, keeping the other query parameters
func NewPager(path string, query url.Values, number, totalPages int) Pager {
	link := func(n int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	p := Pager{Number: number, TotalPages: totalPages}
	if totalPages > 0 {
		p.FirstURL = link(1)
		p.LastURL = link(totalPages)
		p.PrevURL = link(max(number-1, 1))
		p.NextURL = link(min(number+1, totalPages))
	}
	return p
}

func (p Pager) HasPrev() bool { return p.Number > 1 }
func (p Pager) HasNext() bool { return p.Number < p.TotalPages }

// Renderer holds one template set per page, each combined with the layout
// and partials. It implements gin's render.HTMLRender.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"percent": func(d decimal.Decimal) string {
		return d.Round(0).String()
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"deref": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
}

// New parses every page under templates/pages
func New() (*Renderer, error) {
	shared := []string{"templates/layouts/*.html", "templates/partials/*.html"}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		patterns := append(append([]string{}, shared...), page)

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// MustNew is New for program start-up
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether a page exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Instance implements render.HTMLRender. Unknown pages render the error page.
func (r *Renderer) Instance(name string, data interface{}) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		tmpl = r.pages["error"]
	}
	return render.HTML{
		Template: tmpl,
		Name:     "layout",
		Data:     data,
	}
}

// Static serves the embedded assets
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
