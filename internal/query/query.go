// Package query normalizes pagination and sort parameters shared by list endpoints and
// the stores that execute them.
package query

import (
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxOffset bounds how far into a result set a page may reach.
	MaxOffset = 1_000_000
)

// Page is a validated 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// DefaultPageRequest returns page 1 with the default limit.
func DefaultPageRequest() Page {
	return Page{Number: DefaultPage, Limit: DefaultLimit}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Window returns the [start, end) bounds of the page within a result set of size n.
func (p Page) Window(n int) (int, int) {
	start := p.Offset()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}

// ParsePage coerces raw page/limit values. Empty values take defaults; anything that is not
// a positive integer is a validation error. Limits above MaxLimit are clamped.
func ParsePage(page, limit string) (Page, error) {
	p := DefaultPageRequest()

	if v := strings.TrimSpace(page); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Page{}, apperr.Validation("page must be a positive integer")
		}
		p.Number = n
	}

	if v := strings.TrimSpace(limit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Page{}, apperr.Validation("limit must be a positive integer")
		}
		if n > MaxLimit {
			n = MaxLimit
		}
		p.Limit = n
	}

	if p.Number-1 > MaxOffset/p.Limit {
		return Page{}, apperr.Validation("page is out of range")
	}
	return p, nil
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField is a whitelisted video sort key.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortViews     SortField = "views"
	SortDuration  SortField = "duration"
	SortTitle     SortField = "title"
)

var sortFields = map[string]SortField{
	"createdat": SortCreatedAt,
	"views":     SortViews,
	"duration":  SortDuration,
	"title":     SortTitle,
}

// Sort is a validated ordering. Ties are always broken by id in the same direction.
type Sort struct {
	Field     SortField
	Direction Direction
}

// DefaultSort orders newest first.
func DefaultSort() Sort {
	return Sort{Field: SortCreatedAt, Direction: Desc}
}

// ParseSort validates sortBy and sortType. Empty values take the defaults.
func ParseSort(sortBy, sortType string) (Sort, error) {
	s := DefaultSort()

	if v := strings.TrimSpace(sortBy); v != "" {
		field, ok := sortFields[strings.ToLower(v)]
		if !ok {
			return Sort{}, apperr.Validation("unsupported sortBy field", "sortBy must be one of createdAt, views, duration, title")
		}
		s.Field = field
	}

	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "":
	case "asc":
		s.Direction = Asc
	case "desc":
		s.Direction = Desc
	default:
		return Sort{}, apperr.Validation("sortType must be asc or desc")
	}

	return s, nil
}

// VideoFilter describes a video search.
type VideoFilter struct {
	// Text is matched case-insensitively as a substring of title or description.
	Text string
	// OwnerID restricts results to one channel when set.
	OwnerID string
	// ViewerID may see their own unpublished videos.
	ViewerID string
	Sort     Sort
	Page     Page
}
