package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

// UserFetcher validates a token against the backend
type UserFetcher interface {
	Me(ctx context.Context, token string) (*backend.User, error)
}

// FailureFunc renders a non-fatal error page when the backend cannot be
// reached
type FailureFunc func(c *gin.Context, status int, message string)

// MessageSessionUnavailable is shown when /users/me fails for reasons other
// than authorization
const MessageSessionUnavailable = "We could not verify your session right now. Please try again."

// Guard is the one place protected views check the session. The cached
// role is never trusted; every request is validated by the backend.
type Guard struct {
	sessions *session.Store
	users    UserFetcher
	fail     FailureFunc
	logger   *logrus.Logger
}

// NewGuard creates a session guard
func NewGuard(sessions *session.Store, users UserFetcher, fail FailureFunc, logger *logrus.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		users:    users,
		fail:     fail,
		logger:   logger,
	}
}

// RequireSession lets the request through only with a token the backend
// accepts. The validated user and token are put on the context.
func (g *Guard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := g.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireSession plus an admin role check; other users are
// sent to the home page
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := g.authenticate(c)
		if !ok {
			return
		}
		if session.ParseRole(user.Role) != session.RoleAdmin {
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
				return
			}
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *Guard) authenticate(c *gin.Context) (*backend.User, bool) {
	ctx := c.Request.Context()
	visitor := VisitorID(c)

	token, ok := g.sessions.GetToken(ctx, visitor)
	if !ok {
		g.toLogin(c)
		return nil, false
	}

	user, err := g.users.Me(ctx, token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			g.sessions.ClearSession(ctx, visitor)
			g.toLogin(c)
			return nil, false
		}

		g.logger.WithFields(logrus.Fields{
			"component": "guard",
			"visitor":   visitor,
		}).WithError(err).Warn("Session check failed")
		g.fail(c, http.StatusBadGateway, MessageSessionUnavailable)
		c.Abort()
		return nil, false
	}

	g.sessions.UpdateCachedUser(ctx, visitor, session.UserSnapshot{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  session.ParseRole(user.Role),
	})

	c.Set(ContextUser, user)
	c.Set(ContextToken, token)
	return user, true
}

func (g *Guard) toLogin(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.Redirect(http.StatusSeeOther, LoginURL(c.Request.URL.RequestURI()))
	c.Abort()
}

// LoginURL is the login page that returns to next afterwards
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext keeps only same-site relative paths, falling back to fallback
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
