// internal/interfaces/http/handlers/category.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
	"golang.org/x/sync/errgroup"
)

const categoriesPath = "/admin/categories"

// AdminCategoriesData is rendered by the category manager
type AdminCategoriesData struct {
	Categories []backend.Category
	Subs       map[string][]backend.SubCategory
}

// CategoryHandler handles admin category management
type CategoryHandler struct {
	*Base
	api *backend.Client
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(base *Base, api *backend.Client) *CategoryHandler {
	return &CategoryHandler{Base: base, api: api}
}

// List handles GET /admin/categories
func (h *CategoryHandler) List(c *gin.Context) {
	var (
		categories []backend.Category
		subs       []backend.SubCategory
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		categories, err = h.api.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = h.api.ListSubCategories(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to load categories")
		h.renderWithError(c, http.StatusOK, "admin_categories", "Categories", "Failed to load categories", AdminCategoriesData{})
		return
	}

	h.render(c, http.StatusOK, "admin_categories", "Categories", AdminCategoriesData{
		Categories: categories,
		Subs:       backend.GroupSubCategories(subs),
	})
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	input := backend.CategoryInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	if input.Name == "" {
		h.redirect(c, categoriesPath, views.FlashError, "Category name is required")
		return
	}

	if err := h.api.CreateCategory(c.Request.Context(), middleware.SessionToken(c), input); err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to create category")
		h.redirect(c, categoriesPath, views.FlashError, backend.Message(err, "Failed to create category"))
		return
	}
	h.redirect(c, categoriesPath, views.FlashSuccess, "Category created")
}

// DeleteCategory handles POST /admin/categories/:id/delete
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.api.DeleteCategory(c.Request.Context(), middleware.SessionToken(c), c.Param("id")); err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to delete category")
		h.redirect(c, categoriesPath, views.FlashError, backend.Message(err, "Failed to delete category"))
		return
	}
	h.redirect(c, categoriesPath, views.FlashSuccess, "Category deleted")
}

// CreateSubCategory handles POST /admin/subcategories
func (h *CategoryHandler) CreateSubCategory(c *gin.Context) {
	input := backend.CategoryInput{
		Name:       strings.TrimSpace(c.PostForm("name")),
		CategoryID: c.PostForm("categoryId"),
	}
	if input.Name == "" || input.CategoryID == "" {
		h.redirect(c, categoriesPath, views.FlashError, "Category and name are required")
		return
	}

	if err := h.api.CreateSubCategory(c.Request.Context(), middleware.SessionToken(c), input); err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to create sub-category")
		h.redirect(c, categoriesPath, views.FlashError, backend.Message(err, "Failed to create sub-category"))
		return
	}
	h.redirect(c, categoriesPath, views.FlashSuccess, "Sub-category created")
}

// DeleteSubCategory handles POST /admin/subcategories/:id/delete
func (h *CategoryHandler) DeleteSubCategory(c *gin.Context) {
	if err := h.api.DeleteSubCategory(c.Request.Context(), middleware.SessionToken(c), c.Param("id")); err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to delete sub-category")
		h.redirect(c, categoriesPath, views.FlashError, backend.Message(err, "Failed to delete sub-category"))
		return
	}
	h.redirect(c, categoriesPath, views.FlashSuccess, "Sub-category deleted")
}
