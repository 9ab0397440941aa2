package query

import (
	"strings"

	"github.com/tahp/LinkManager/internal/model"
)

// Request describes one list view: an optional filter, a sort and a page.
type Request struct {
	Search string // substring over title, url and notes
	Query  string // field:value tokens; takes precedence over Search
	Sort   string
	Order  string
	Page   int
}

// DefaultSort is the list order views use when none is requested.
const DefaultSort = SortReminder

// Select filters, sorts and pages links as req describes.
func Select(links []model.Link, req Request, pageSize int) (Page, error) {
	filtered := links
	switch {
	case strings.TrimSpace(req.Query) != "":
		var err error
		if filtered, err = SearchQuery(links, req.Query); err != nil {
			return Page{}, err
		}
	case req.Search != "":
		filtered = Search(links, req.Search)
	}

	key, err := ParseSortKey(req.Sort)
	if err != nil {
		return Page{}, err
	}
	return Paginate(Sort(filtered, key, ParseOrder(req.Order)), req.Page, pageSize)
}
