// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// LoginData is rendered by the login page
type LoginData struct {
	Email string
	Next  string
	Error string
}

// RegisterData is rendered by the register page
type RegisterData struct {
	Name  string
	Email string
	Error string
}

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	*Base
	api *backend.Client
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(base *Base, api *backend.Client) *AuthHandler {
	return &AuthHandler{Base: base, api: api}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", "Sign In", LoginData{Next: c.Query("next")})
}

// Login handles POST /login. The token and user are stored only after the
// backend accepted the credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	data := LoginData{
		Email: strings.TrimSpace(c.PostForm("email")),
		Next:  c.PostForm("next"),
	}

	result, err := h.api.Login(c.Request.Context(), backend.Credentials{
		Email:    data.Email,
		Password: c.PostForm("password"),
	})
	if err != nil {
		data.Error = backend.Message(err, "Login failed")
		status := http.StatusUnauthorized
		if !backend.IsUnauthorized(err) {
			h.log(c, "auth").WithError(err).Warn("Login failed")
			status = http.StatusOK
		}
		h.render(c, status, "login", "Sign In", data)
		return
	}

	u := result.User
	h.sessions.SetSession(c.Request.Context(), middleware.VisitorID(c), result.Token, snapshotOf(u.ID, u.Name, u.Email, u.Role))

	h.log(c, "auth").WithField("user_id", u.ID).Info("User logged in")
	h.redirect(c, middleware.SafeNext(data.Next, "/"), views.FlashSuccess, "Welcome back, "+u.Name)
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register", "Create Account", RegisterData{})
}

// Register handles POST /register and sends the new user to the login page
func (h *AuthHandler) Register(c *gin.Context) {
	data := RegisterData{
		Name:  strings.TrimSpace(c.PostForm("name")),
		Email: strings.TrimSpace(c.PostForm("email")),
	}

	_, err := h.api.Register(c.Request.Context(), backend.Registration{
		Name:     data.Name,
		Email:    data.Email,
		Password: c.PostForm("password"),
	})
	if err != nil {
		data.Error = backend.Message(err, "Registration failed")
		h.render(c, http.StatusOK, "register", "Create Account", data)
		return
	}

	h.redirect(c, "/login", views.FlashSuccess, "Account created. Please log in.")
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearSession(c.Request.Context(), middleware.VisitorID(c))
	h.redirect(c, "/", views.FlashInfo, "You have been logged out")
}

// Session handles GET /api/session: the client-state snapshot a scripted
// view needs to repaint itself
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.state(c))
}
