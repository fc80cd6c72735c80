// Package pagination implements offset pagination for list endpoints.
package pagination

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// Params holds the requested page window
type Params struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// Meta describes the page returned to the caller
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// Result is a page of items with its metadata
type Result[T any] struct {
	Items      []T   `json:"items"`
	Pagination *Meta `json:"pagination"`
}

// Validate clamps the window to sane bounds
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
}

// Offset returns the number of rows to skip
func (p *Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewResult builds a page from already-validated params
func NewResult[T any](items []T, params *Params, total int64) *Result[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if params.PerPage > 0 {
		totalPages = int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	}
	return &Result[T]{
		Items: items,
		Pagination: &Meta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     params.Page < totalPages,
			HasPrev:     params.Page > 1,
		},
	}
}
