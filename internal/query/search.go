// Package query filters, sorts and pages in-memory link lists. Every
// function works on a copy and never modifies its input.
package query

import (
	"fmt"
	"strings"

	"github.com/tahp/LinkManager/internal/model"
)

// Search returns the links whose title, URL or notes contain term,
// ignoring case, in their original order. The term is matched as given,
// surrounding spaces included; only the empty term matches all.
func Search(links []model.Link, term string) []model.Link {
	term = strings.ToLower(term)
	out := make([]model.Link, 0, len(links))
	for _, l := range links {
		if term == "" || matchesAny(l, term) {
			out = append(out, l)
		}
	}
	return out
}

func matchesAny(l model.Link, term string) bool {
	return contains(l.Title, term) || contains(l.URL, term) || contains(l.Notes, term)
}

func contains(field, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(field), lowerTerm)
}

// Field is a searchable link field in a structured query.
type Field string

const (
	FieldTitle Field = "title"
	FieldURL   Field = "url"
	FieldNotes Field = "notes"
	FieldIs    Field = "is"
)

// Values accepted by the is: pseudo-field.
const (
	IsDefault    = "default"
	IsNotDefault = "not-default"
)

// Term is one field:value token.
type Term struct {
	Field Field
	Value string
}

// Query is a parsed structured query. A link matches when it satisfies
// every term.
type Query struct {
	Terms []Term
}

// ParseQuery splits q on whitespace into field:value tokens. Any malformed
// token rejects the whole query.
func ParseQuery(q string) (Query, error) {
	var parsed Query
	for _, tok := range strings.Fields(q) {
		name, value, ok := strings.Cut(tok, ":")
		if !ok {
			return Query{}, model.NewValidationError("query",
				fmt.Sprintf("token %q is not field:value", tok))
		}
		if value == "" {
			return Query{}, model.NewValidationError("query",
				fmt.Sprintf("token %q has no value", tok))
		}

		field := Field(strings.ToLower(name))
		switch field {
		case FieldTitle, FieldURL, FieldNotes:
			parsed.Terms = append(parsed.Terms, Term{Field: field, Value: strings.ToLower(value)})
		case FieldIs:
			v := strings.ToLower(value)
			if v != IsDefault && v != IsNotDefault {
				return Query{}, model.NewValidationError("query",
					fmt.Sprintf("is:%s must be is:%s or is:%s", value, IsDefault, IsNotDefault))
			}
			parsed.Terms = append(parsed.Terms, Term{Field: FieldIs, Value: v})
		default:
			return Query{}, model.NewValidationError("query",
				fmt.Sprintf("unknown field %q", name))
		}
	}
	return parsed, nil
}

// Match reports whether l satisfies every term of q.
func (q Query) Match(l model.Link) bool {
	for _, t := range q.Terms {
		switch t.Field {
		case FieldTitle:
			if !contains(l.Title, t.Value) {
				return false
			}
		case FieldURL:
			if !contains(l.URL, t.Value) {
				return false
			}
		case FieldNotes:
			if !contains(l.Notes, t.Value) {
				return false
			}
		case FieldIs:
			if l.IsDefault != (t.Value == IsDefault) {
				return false
			}
		}
	}
	return true
}

// Filter returns the links matching q in their original order.
func Filter(links []model.Link, q Query) []model.Link {
	out := make([]model.Link, 0, len(links))
	for _, l := range links {
		if q.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// SearchQuery parses q and filters links with it.
func SearchQuery(links []model.Link, q string) ([]model.Link, error) {
	parsed, err := ParseQuery(q)
	if err != nil {
		return nil, err
	}
	return Filter(links, parsed), nil
}
