// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/analytics"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// AdminDashboardData is rendered by the admin dashboard
type AdminDashboardData struct {
	Stats *analytics.DashboardStats
}

// AnalyticsHandler handles the admin dashboard
type AnalyticsHandler struct {
	*Base
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(base *Base, analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{Base: base, analyticsService: analyticsService}
}

// Dashboard handles GET /admin/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		h.renderWithError(c, http.StatusOK, "admin_dashboard", "Admin Dashboard",
			"Failed to retrieve dashboard statistics", AdminDashboardData{})
		return
	}
	h.render(c, http.StatusOK, "admin_dashboard", "Admin Dashboard", AdminDashboardData{Stats: stats})
}

// GetDashboard handles GET /api/admin/stats
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to retrieve dashboard statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
