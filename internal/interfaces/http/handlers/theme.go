package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// ThemeHandler flips the visitor's colour theme
type ThemeHandler struct {
	*Base
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(base *Base) *ThemeHandler {
	return &ThemeHandler{Base: base}
}

// ToggleForm handles POST /theme/toggle for visitors without scripts
func (h *ThemeHandler) ToggleForm(c *gin.Context) {
	h.themes.Toggle(c.Request.Context(), middleware.VisitorID(c), osTheme(c))
	c.Redirect(http.StatusSeeOther, middleware.SafeNext(c.PostForm("next"), "/"))
}

// Toggle handles POST /api/theme/toggle
func (h *ThemeHandler) Toggle(c *gin.Context) {
	next := h.themes.Toggle(c.Request.Context(), middleware.VisitorID(c), osTheme(c))
	c.JSON(http.StatusOK, gin.H{"theme": next})
}
