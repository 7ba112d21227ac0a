// internal/interfaces/http/handlers/product_admin.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
	"golang.org/x/sync/errgroup"
)

const adminProductsPath = "/admin/products"

// ProductForm is the admin product editor, kept as strings so a rejected
// submission re-renders exactly what was typed
type ProductForm struct {
	ID          string
	Name        string
	Description string
	Category    string
	SubCategory string
	Price       string
	Discount    string
	Stock       string
	ImageURL    string
}

// AdminProductsData is rendered by the admin product manager
type AdminProductsData struct {
	Form          ProductForm
	Error         string
	Products      []catalog.ProductView
	Categories    []backend.Category
	SubCategories []backend.SubCategory
}

func productFormFromRequest(c *gin.Context) ProductForm {
	return ProductForm{
		ID:          c.Param("id"),
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    c.PostForm("category"),
		SubCategory: c.PostForm("subCategory"),
		Price:       strings.TrimSpace(c.PostForm("price")),
		Discount:    strings.TrimSpace(c.PostForm("discount")),
		Stock:       strings.TrimSpace(c.PostForm("stock")),
		ImageURL:    strings.TrimSpace(c.PostForm("imageUrl")),
	}
}

func productFormFrom(p backend.Product) ProductForm {
	form := ProductForm{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category.ID,
		SubCategory: p.SubCategory.ID,
		Price:       p.Price.StringFixed(2),
		Discount:    p.Discount.String(),
		ImageURL:    p.ImageURL,
	}
	if p.Stock != nil {
		form.Stock = strconv.Itoa(*p.Stock)
	}
	return form
}

// toInput validates the form and returns the first problem found.
// Discount is a percentage in [0, 100].
func (f ProductForm) toInput() (backend.ProductInput, string) {
	input := backend.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		ImageURL:    f.ImageURL,
		Discount:    decimal.Zero,
	}

	if input.Name == "" {
		return input, "Name is required"
	}
	if input.Category == "" {
		return input, "Category is required"
	}

	price, err := decimal.NewFromString(f.Price)
	if err != nil || price.IsNegative() {
		return input, "Price must be a non-negative number"
	}
	input.Price = price

	if f.Discount != "" {
		discount, err := decimal.NewFromString(f.Discount)
		if err != nil || discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
			return input, "Discount must be between 0 and 100"
		}
		input.Discount = discount
	}

	if f.Stock != "" {
		stock, err := strconv.Atoi(f.Stock)
		if err != nil || stock < 0 {
			return input, "Stock must be a non-negative whole number"
		}
		input.Stock = stock
	}

	return input, ""
}

// AdminProductHandler handles admin product management
type AdminProductHandler struct {
	*Base
	api *backend.Client
}

// NewAdminProductHandler creates a new admin product handler
func NewAdminProductHandler(base *Base, api *backend.Client) *AdminProductHandler {
	return &AdminProductHandler{Base: base, api: api}
}

// List handles GET /admin/products?edit=
func (h *AdminProductHandler) List(c *gin.Context) {
	data, err := h.load(c)
	if err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to load products")
		h.renderWithError(c, http.StatusOK, "admin_products", "Products", "Failed to load products", data)
		return
	}

	if id := c.Query("edit"); id != "" {
		for _, p := range data.Products {
			if p.ID == id {
				data.Form = productFormFrom(p.Product)
				break
			}
		}
	}

	h.render(c, http.StatusOK, "admin_products", "Products", data)
}

// Create handles POST /admin/products
func (h *AdminProductHandler) Create(c *gin.Context) {
	form := productFormFromRequest(c)
	input, problem := form.toInput()
	if problem != "" {
		h.reject(c, http.StatusUnprocessableEntity, form, problem)
		return
	}

	product, err := h.api.CreateProduct(c.Request.Context(), middleware.SessionToken(c), input)
	if err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to create product")
		h.reject(c, http.StatusBadGateway, form, backend.Message(err, "Failed to create product"))
		return
	}

	h.log(c, "admin").WithField("product_id", product.ID).Info("Product created")
	h.redirect(c, adminProductsPath, views.FlashSuccess, "Product created")
}

// Update handles POST /admin/products/:id
func (h *AdminProductHandler) Update(c *gin.Context) {
	form := productFormFromRequest(c)
	input, problem := form.toInput()
	if problem != "" {
		h.reject(c, http.StatusUnprocessableEntity, form, problem)
		return
	}

	if _, err := h.api.UpdateProduct(c.Request.Context(), middleware.SessionToken(c), form.ID, input); err != nil {
		h.log(c, "admin").WithError(err).WithField("product_id", form.ID).Warn("Failed to update product")
		h.reject(c, http.StatusBadGateway, form, backend.Message(err, "Failed to update product"))
		return
	}

	h.redirect(c, adminProductsPath, views.FlashSuccess, "Product updated")
}

// Delete handles POST /admin/products/:id/delete
func (h *AdminProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.api.DeleteProduct(c.Request.Context(), middleware.SessionToken(c), id); err != nil {
		h.log(c, "admin").WithError(err).WithField("product_id", id).Warn("Failed to delete product")
		h.redirect(c, adminProductsPath, views.FlashError, backend.Message(err, "Failed to delete product"))
		return
	}
	h.redirect(c, adminProductsPath, views.FlashSuccess, "Product deleted")
}

func (h *AdminProductHandler) reject(c *gin.Context, status int, form ProductForm, message string) {
	data, err := h.load(c)
	if err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to reload products")
	}
	data.Form = form
	data.Error = message
	h.render(c, status, "admin_products", "Products", data)
}

func (h *AdminProductHandler) load(c *gin.Context) (AdminProductsData, error) {
	var (
		data     AdminProductsData
		products []backend.Product
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		products, err = h.api.ListProducts(ctx, backend.ProductFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		data.Categories, err = h.api.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.SubCategories, err = h.api.ListSubCategories(ctx)
		return err
	})

	err := g.Wait()
	data.Products = catalog.NewProductViews(products)
	return data, err
}
