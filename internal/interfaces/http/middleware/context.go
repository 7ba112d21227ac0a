package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

// Keys set on the gin context
const (
	ContextRequestID = "request_id"
	ContextVisitor   = "visitor_id"
	ContextUser      = "user"
	ContextToken     = "token"
)

// VisitorID returns the visitor namespace set by Visitor
func VisitorID(c *gin.Context) string {
	return c.GetString(ContextVisitor)
}

// CurrentUser returns the user validated by the session guard
func CurrentUser(c *gin.Context) (*backend.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*backend.User)
	return user, ok && user != nil
}

// SessionToken returns the token validated by the session guard
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextToken)
}
