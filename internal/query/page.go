package query

import (
	"fmt"

	"github.com/tahp/LinkManager/internal/model"
)

// Page size bounds.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Page is one slice of a result list.
type Page struct {
	Items      []model.Link `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns items [(page-1)*size, page*size) of links, clipped to
// the list. Pages below 1 are treated as page 1; a page past the end is
// empty.
func Paginate(links []model.Link, page, size int) (Page, error) {
	if size < MinPageSize || size > MaxPageSize {
		return Page{}, model.NewValidationError("page_size",
			fmt.Sprintf("must be between %d and %d", MinPageSize, MaxPageSize))
	}
	if page < 1 {
		page = 1
	}

	total := len(links)
	p := Page{
		Items:      []model.Link{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}

	if page > p.TotalPages {
		return p, nil
	}
	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = append(p.Items, links[start:end]...)
	return p, nil
}
