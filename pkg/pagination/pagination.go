package pagination

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request. Pages are
// 1-indexed.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = DefaultPage
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the page position within a result set.
type Meta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data: data,
		Pagination: Meta{
			CurrentPage:  p.Page,
			TotalPages:   TotalPages(total, p.Limit),
			TotalItems:   total,
			ItemsPerPage: p.Limit,
		},
	}
}

// TotalPages returns the number of pages needed to hold total items.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Page < TotalPages(total, p.Limit)
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}
