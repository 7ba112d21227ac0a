// internal/interfaces/http/handlers/base.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/domain/theme"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// ErrorData is rendered by the error page
type ErrorData struct {
	Status  int
	Message string
}

// Base carries what every page needs: the visitor's theme, cart badge,
// session hint and pending flash message
type Base struct {
	config   *config.Config
	sessions *session.Store
	themes   *theme.Store
	carts    *cart.Store
	flashes  *FlashStore
	logger   *logrus.Logger
}

// NewBase creates the shared page helper
func NewBase(cfg *config.Config, sessions *session.Store, themes *theme.Store, carts *cart.Store, flashes *FlashStore, logger *logrus.Logger) *Base {
	return &Base{
		config:   cfg,
		sessions: sessions,
		themes:   themes,
		carts:    carts,
		flashes:  flashes,
		logger:   logger,
	}
}

// VisitorState is the client state every view shows: theme, session hint
// and cart badge
type VisitorState struct {
	Theme     string                `json:"theme"`
	User      *session.UserSnapshot `json:"user"`
	CartCount int                   `json:"cart_count"`
}

func (b *Base) state(c *gin.Context) VisitorState {
	ctx := c.Request.Context()
	visitor := middleware.VisitorID(c)

	st := VisitorState{
		Theme:     string(b.themes.Read(ctx, visitor, osTheme(c))),
		CartCount: b.carts.Load(ctx, visitor).Count(),
	}

	if user, ok := middleware.CurrentUser(c); ok {
		snapshot := snapshotOf(user.ID, user.Name, user.Email, user.Role)
		st.User = &snapshot
	} else if _, ok := b.sessions.GetToken(ctx, visitor); ok {
		if cached, ok := b.sessions.GetCachedUser(ctx, visitor); ok {
			st.User = cached
		}
	}
	return st
}

// page assembles the layout data and consumes the pending flash
func (b *Base) page(c *gin.Context, title string, data interface{}) views.Page {
	st := b.state(c)
	return views.Page{
		AppName:   b.config.App.Name,
		Title:     title,
		Theme:     st.Theme,
		Path:      c.Request.URL.RequestURI(),
		User:      st.User,
		CartCount: st.CartCount,
		Flash:     b.flashes.Pop(c.Request.Context(), middleware.VisitorID(c)),
		Data:      data,
	}
}

func (b *Base) render(c *gin.Context, status int, name, title string, data interface{}) {
	c.HTML(status, name, b.page(c, title, data))
}

// renderWithError renders a page with an inline error flash instead of the
// stored one
func (b *Base) renderWithError(c *gin.Context, status int, name, title, message string, data interface{}) {
	p := b.page(c, title, data)
	p.Flash = &views.Flash{Kind: views.FlashError, Message: message}
	c.HTML(status, name, p)
}

// Fail renders the error page with a dismissible message. It is the
// session guard's failure renderer.
func (b *Base) Fail(c *gin.Context, status int, message string) {
	b.renderWithError(c, status, "error", "Something went wrong", message, ErrorData{
		Status:  status,
		Message: message,
	})
}

// NotFound renders the 404 page
func (b *Base) NotFound(c *gin.Context) {
	if isJSONRequest(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	b.render(c, http.StatusNotFound, "error", "Not found", ErrorData{
		Status:  http.StatusNotFound,
		Message: "The page you are looking for does not exist.",
	})
}

// redirect answers 303 to location, leaving a flash message for the next
// page when message is not empty
func (b *Base) redirect(c *gin.Context, location, kind, message string) {
	if message != "" {
		b.flashes.Push(c.Request.Context(), middleware.VisitorID(c), views.Flash{Kind: kind, Message: message})
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (b *Base) log(c *gin.Context, component string) *logrus.Entry {
	return b.logger.WithFields(logrus.Fields{
		"component":  component,
		"visitor":    middleware.VisitorID(c),
		"request_id": c.GetString(middleware.ContextRequestID),
	})
}

func osTheme(c *gin.Context) theme.Theme {
	return theme.Parse(c.GetHeader(theme.ClientHintHeader))
}

func snapshotOf(id, name, email, role string) session.UserSnapshot {
	return session.UserSnapshot{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  session.ParseRole(role),
	}
}

func isJSONRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
