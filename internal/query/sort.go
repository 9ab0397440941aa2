package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/tahp/LinkManager/internal/model"
)

// SortKey names a sortable link attribute.
type SortKey string

const (
	SortNone        SortKey = ""
	SortTitle       SortKey = "title"
	SortCreated     SortKey = "created"
	SortLastVisited SortKey = "last_visited"
	SortVisitCount  SortKey = "visit_count"
	SortReminder    SortKey = "reminder_time"
)

// SortKeys lists the accepted keys in display order.
var SortKeys = []SortKey{SortTitle, SortCreated, SortLastVisited, SortVisitCount, SortReminder}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey validates s. An empty string means no sorting.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == SortNone || slices.Contains(SortKeys, key) {
		return key, nil
	}
	return SortNone, model.NewValidationError("sort_by", fmt.Sprintf("unknown sort key %q", s))
}

// ParseOrder returns Desc for "desc" and Asc for anything else.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort returns a stably sorted copy of links. Links without a reminder
// come after all links with one when sorting by reminder_time, in either
// direction.
func Sort(links []model.Link, key SortKey, order Order) []model.Link {
	out := slices.Clone(links)
	if out == nil {
		out = []model.Link{}
	}

	if key == SortReminder {
		sortByReminder(out, order)
		return out
	}

	compare := comparator(key)
	if compare == nil {
		return out
	}
	if order == Desc {
		slices.SortStableFunc(out, func(a, b model.Link) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

func comparator(key SortKey) func(a, b model.Link) int {
	switch key {
	case SortTitle:
		return func(a, b model.Link) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortCreated:
		return func(a, b model.Link) int { return cmp.Compare(a.CreatedTimestamp, b.CreatedTimestamp) }
	case SortLastVisited:
		return func(a, b model.Link) int { return cmp.Compare(a.LastVisitedTimestamp, b.LastVisitedTimestamp) }
	case SortVisitCount:
		return func(a, b model.Link) int { return cmp.Compare(a.VisitCount, b.VisitCount) }
	default:
		return nil
	}
}

// sortByReminder orders links in place on (no reminder, timestamp), then
// for Desc reverses only the group that has a reminder.
func sortByReminder(links []model.Link, order Order) {
	slices.SortStableFunc(links, func(a, b model.Link) int {
		if a.HasReminder() != b.HasReminder() {
			if a.HasReminder() {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ReminderTimestamp, b.ReminderTimestamp)
	})
	if order != Desc {
		return
	}

	n := 0
	for n < len(links) && links[n].HasReminder() {
		n++
	}
	withReminder := links[:n]
	slices.SortStableFunc(withReminder, func(a, b model.Link) int {
		return cmp.Compare(b.ReminderTimestamp, a.ReminderTimestamp)
	})
}
