package listing

import (
	"errors"
	"time"

	"sales_admin/internal/sales"
)

// DefaultPageSize is the number of records per listing page.
const DefaultPageSize = 10

// ErrInvalidDateRange is returned when the start date is after the end date.
var ErrInvalidDateRange = errors.New("la fecha de inicio no puede ser posterior a la fecha de fin")

// Gate suppresses automatic fetches until the user explicitly applies filters.
type Gate int

const (
	// GateArmed: nothing has been loaded yet; only ApplyFilters (or a
	// Refresh with filters set, which opens the gate) may hit the network.
	GateArmed Gate = iota
	// GateOpen: data was loaded at least once; page changes and deletes
	// refetch automatically.
	GateOpen
)

func (g Gate) String() string {
	if g == GateOpen {
		return "open"
	}
	return "armed"
}

// Query is the immutable search/filter/pagination state of the listing.
// It only changes through Reduce.
type Query struct {
	Search string
	Start  *time.Time
	End    *time.Time
	Page   int
	Gate   Gate
}

// InitialQuery is the state of a freshly mounted listing.
func InitialQuery() Query {
	return Query{Page: 1, Gate: GateArmed}
}

// Filter extracts the part of q sent to the API.
func (q Query) Filter() sales.Filter {
	return sales.Filter{Search: q.Search, Start: q.Start, End: q.End}
}

// Validate checks the date range.
func (q Query) Validate() error {
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// Action is one state transition.
type Action interface {
	apply(q Query) Query
}

// SetSearch replaces the search text.
type SetSearch struct{ Text string }

// SetDateRange replaces both date bounds; nil clears a bound.
type SetDateRange struct{ Start, End *time.Time }

// SetPage moves to page N (values below 1 clamp to 1).
type SetPage struct{ N int }

// Apply resets to the first page and opens the gate for good.
type Apply struct{}

// Open opens the gate without moving off the current page.
type Open struct{}

// Clear empties every filter, returns to page 1 and re-arms the gate.
type Clear struct{}

func (a SetSearch) apply(q Query) Query {
	q.Search = a.Text
	return q
}

func (a SetDateRange) apply(q Query) Query {
	q.Start = copyTime(a.Start)
	q.End = copyTime(a.End)
	return q
}

func (a SetPage) apply(q Query) Query {
	if a.N < 1 {
		a.N = 1
	}
	q.Page = a.N
	return q
}

func (Apply) apply(q Query) Query {
	q.Page = 1
	q.Gate = GateOpen
	return q
}

func (Open) apply(q Query) Query {
	q.Gate = GateOpen
	return q
}

func (Clear) apply(q Query) Query {
	return InitialQuery()
}

// Reduce returns the state after applying a to q. q itself is not modified.
func Reduce(q Query, a Action) Query {
	return a.apply(q)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
