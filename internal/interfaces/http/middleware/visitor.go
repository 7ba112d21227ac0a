package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/ecommerce-storefront/internal/config"
)

// VisitorCookie names the cookie that carries the visitor namespace
const VisitorCookie = "visitor_id"

// Visitor makes sure every request has a visitor id. A missing or
// malformed cookie is replaced by a fresh uuid.
func Visitor(cfg *config.Config) gin.HandlerFunc {
	maxAge := int(cfg.Security.VisitorCookieTTL.Seconds())

	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil || !validVisitorID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VisitorCookie, id, maxAge, "/", "", cfg.Security.CookieSecure, true)
		}

		c.Set(ContextVisitor, id)
		c.Next()
	}
}

func validVisitorID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
