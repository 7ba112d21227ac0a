// internal/infrastructure/backend/catalog.go
package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListProducts calls GET /products
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.SubCategory != "" {
		query.Set("sub", filter.SubCategory)
	}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}

	var products []Product
	if err := c.call(ctx, http.MethodGet, "/products", query, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct calls GET /products/:id
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.call(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct calls POST /products (admin)
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.call(ctx, http.MethodPost, "/products", nil, token, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct calls PUT /products/:id (admin)
func (c *Client) UpdateProduct(ctx context.Context, token, id string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.call(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, token, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct calls DELETE /products/:id (admin)
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, token, nil, nil)
}

// ListCategories calls GET /categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.call(ctx, http.MethodGet, "/categories", nil, "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory calls POST /categories (admin)
func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) error {
	input.CategoryID = ""
	return c.call(ctx, http.MethodPost, "/categories", nil, token, input, nil)
}

// DeleteCategory calls DELETE /categories/:id (admin)
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, token, nil, nil)
}

// ListSubCategories calls GET /subcategories
func (c *Client) ListSubCategories(ctx context.Context) ([]SubCategory, error) {
	var subs []SubCategory
	if err := c.call(ctx, http.MethodGet, "/subcategories", nil, "", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// CreateSubCategory calls POST /subcategories (admin)
func (c *Client) CreateSubCategory(ctx context.Context, token string, input CategoryInput) error {
	return c.call(ctx, http.MethodPost, "/subcategories", nil, token, input, nil)
}

// DeleteSubCategory calls DELETE /subcategories/:id (admin)
func (c *Client) DeleteSubCategory(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/subcategories/"+url.PathEscape(id), nil, token, nil, nil)
}

// GroupSubCategories indexes subcategories by their category id
func GroupSubCategories(subs []SubCategory) map[string][]SubCategory {
	grouped := make(map[string][]SubCategory)
	for _, s := range subs {
		if s.Category.ID == "" {
			continue
		}
		grouped[s.Category.ID] = append(grouped[s.Category.ID], s)
	}
	return grouped
}
