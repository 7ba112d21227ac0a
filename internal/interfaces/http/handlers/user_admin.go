// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// AdminUsersData is rendered by the admin user list
type AdminUsersData struct {
	Users []backend.User
}

// UserAdminHandler handles admin user management
type UserAdminHandler struct {
	*Base
	api *backend.Client
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(base *Base, api *backend.Client) *UserAdminHandler {
	return &UserAdminHandler{Base: base, api: api}
}

// List handles GET /admin/users
func (h *UserAdminHandler) List(c *gin.Context) {
	users, err := h.api.ListUsers(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to load users")
		h.renderWithError(c, http.StatusOK, "admin_users", "Users", "Failed to load users", AdminUsersData{})
		return
	}

	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	h.render(c, http.StatusOK, "admin_users", "Users", AdminUsersData{Users: users})
}

// Promote handles POST /admin/users/:id/promote
func (h *UserAdminHandler) Promote(c *gin.Context) {
	id := c.Param("id")
	if err := h.api.PromoteUser(c.Request.Context(), middleware.SessionToken(c), id); err != nil {
		h.log(c, "admin").WithError(err).WithField("user_id", id).Warn("Failed to promote user")
		h.redirect(c, "/admin/users", views.FlashError, backend.Message(err, "Failed to promote user"))
		return
	}

	h.log(c, "admin").WithField("user_id", id).Info("User promoted to admin")
	h.redirect(c, "/admin/users", views.FlashSuccess, "User promoted to admin")
}
