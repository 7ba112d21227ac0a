// internal/domain/catalog/paginate.go
package catalog

// Page is one page of a list plus the numbers the pager needs
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

// HasPrev reports whether a previous page exists
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Prev is the previous page number
func (p Page[T]) Prev() int { return p.Number - 1 }

// Next is the next page number
func (p Page[T]) Next() int { return p.Number + 1 }

// Paginate slices items into pages of perPage and returns page number n,
// clamped into range. An empty list yields page 1 of 0.
func Paginate[T any](items []T, n, perPage int) Page[T] {
	if perPage < 1 {
		perPage = ItemsPerPage
	}

	total := len(items)
	pages := (total + perPage - 1) / perPage

	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}

	start := (n - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     n,
		TotalPages: pages,
		TotalItems: total,
	}
}
