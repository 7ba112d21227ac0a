// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
	"golang.org/x/sync/errgroup"
)

const latestProductsLimit = 8

// HomeData is rendered by the home page
type HomeData struct {
	BestDeals  []catalog.ProductView
	Latest     []catalog.ProductView
	Categories []string
}

// ProductsData is rendered by the product grid
type ProductsData struct {
	Heading    string
	Products   []catalog.ProductView
	Pager      views.Pager
	Category   string
	Sub        string
	Query      string
	Categories []backend.Category
}

// ProductData is rendered by the product detail page
type ProductData struct {
	Product       catalog.ProductView
	Reviews       []backend.Review
	CanReview     bool
	ReviewOrderID string
	InCart        int
	IsAdmin       bool
}

// ProductHandler handles catalog pages
type ProductHandler struct {
	*Base
	api *backend.Client
}

// NewProductHandler creates a new product handler
func NewProductHandler(base *Base, api *backend.Client) *ProductHandler {
	return &ProductHandler{Base: base, api: api}
}

// Home handles GET /
func (h *ProductHandler) Home(c *gin.Context) {
	data := HomeData{Categories: catalog.FeaturedCategories}

	products, err := h.api.ListProducts(c.Request.Context(), backend.ProductFilter{})
	if err != nil {
		h.log(c, "catalog").WithError(err).Warn("Failed to load products for home page")
		h.renderWithError(c, http.StatusOK, "home", "", "Failed to load products", data)
		return
	}

	data.BestDeals = catalog.NewProductViews(catalog.BestDeals(products, catalog.BestDealsLimit))
	data.Latest = catalog.NewProductViews(latest(products, latestProductsLimit))

	h.render(c, http.StatusOK, "home", "", data)
}

// List handles GET /products?category=&sub=&q=&page=
func (h *ProductHandler) List(c *gin.Context) {
	filter := backend.ProductFilter{
		Category:    c.Query("category"),
		SubCategory: c.Query("sub"),
		Query:       c.Query("q"),
	}
	pageNumber, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var (
		products   []backend.Product
		categories []backend.Category
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		products, err = h.api.ListProducts(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		if categories, err = h.api.ListCategories(ctx); err != nil {
			h.log(c, "catalog").WithError(err).Debug("Category filter unavailable")
		}
		return nil
	})

	err := g.Wait()

	data := ProductsData{
		Heading:    catalog.Heading(filter.Category, filter.SubCategory, filter.Query),
		Category:   filter.Category,
		Sub:        filter.SubCategory,
		Query:      filter.Query,
		Categories: categories,
	}

	if err != nil {
		h.log(c, "catalog").WithError(err).Warn("Failed to load products")
		h.renderWithError(c, http.StatusOK, "products", data.Heading, "Failed to load products", data)
		return
	}

	page := catalog.Paginate(catalog.NewProductViews(products), pageNumber, catalog.ItemsPerPage)
	data.Products = page.Items
	data.Pager = views.NewPager("/products", c.Request.URL.Query(), page.Number, page.TotalPages)

	h.render(c, http.StatusOK, "products", data.Heading, data)
}

// Detail handles GET /products/:id and GET /products/:id/:slug. Requests
// without the canonical slug are redirected to it.
func (h *ProductHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	product, err := h.api.GetProduct(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			h.NotFound(c)
			return
		}
		h.log(c, "catalog").WithError(err).WithField("product_id", id).Warn("Failed to load product")
		h.Fail(c, http.StatusBadGateway, "Failed to load product")
		return
	}

	view := catalog.NewProductView(*product)
	if c.Param("slug") != view.Slug {
		c.Redirect(http.StatusMovedPermanently, view.URL)
		return
	}

	data := ProductData{Product: view}

	visitor := middleware.VisitorID(c)
	if line, ok := h.carts.Load(ctx, visitor).Find(id); ok {
		data.InCart = line.Quantity
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reviews, err := h.api.ProductReviews(gctx, id)
		if err != nil {
			h.log(c, "catalog").WithError(err).Debug("Reviews unavailable")
			return nil
		}
		data.Reviews = reviews
		return nil
	})
	if token, ok := h.sessions.GetToken(ctx, visitor); ok {
		if cached, ok := h.sessions.GetCachedUser(ctx, visitor); ok {
			data.IsAdmin = cached.IsAdmin()
		}
		g.Go(func() error {
			eligibility, err := h.api.CanReview(gctx, token, id)
			if err != nil {
				h.log(c, "catalog").WithError(err).Debug("Review eligibility unavailable")
				return nil
			}
			data.CanReview = eligibility.CanReview
			data.ReviewOrderID = eligibility.OrderID
			return nil
		})
	}
	_ = g.Wait()

	h.render(c, http.StatusOK, "product", view.Name, data)
}

// latest returns up to limit products, newest first. The API lists in
// insertion order.
func latest(products []backend.Product, limit int) []backend.Product {
	out := make([]backend.Product, 0, limit)
	for i := len(products) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, products[i])
	}
	return out
}
