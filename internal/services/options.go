package services

import (
	"fmt"
	"slices"

	"posdash/internal/backend"
)

// Order is the sort direction of a list.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const defaultSortColumn = "created_at"

// ListOptions filters and orders a List call.
//
// The zero value lists every row, newest first. Search matches a
// case-insensitive substring of the name column. SortBy must name a column of
// the listed entity; Order defaults to Desc. Limit <= 0 disables the limit.
type ListOptions struct {
	Limit  int
	SortBy string
	Order  Order
	Search string
}

func (o ListOptions) query(sortable []string) (backend.Query, error) {
	q := backend.Query{OrderBy: defaultSortColumn, Limit: o.Limit}

	if o.SortBy != "" {
		if !slices.Contains(sortable, o.SortBy) {
			return q, ValidationError("sortBy", fmt.Sprintf("cannot sort by %q", o.SortBy))
		}
		q.OrderBy = o.SortBy
	}

	switch o.Order {
	case "", Desc:
	case Asc:
		q.Ascending = true
	default:
		return q, ValidationError("order", fmt.Sprintf("order must be %q or %q", Asc, Desc))
	}

	if o.Search != "" {
		q.Filters = append(q.Filters, backend.ILike("name", o.Search))
	}
	return q, nil
}
