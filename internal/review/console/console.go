// Package console derives the review console's table view: a filtered,
// sorted, paginated projection over the raw registration list fetched for one
// event. The raw list is a faithful cache of the last successful fetch and is
// never mutated; every view is derived fresh.
package console

import (
	"sort"
	"strings"

	"ensemble/internal/review/models"
	dErrors "ensemble/pkg/domain-errors"
)

// StatusAll is the pass-through sentinel for the status filter.
const StatusAll = "all"

// SortKey selects the comparison column.
type SortKey string

const (
	SortByCreatedAt     SortKey = "created_at"
	SortByName          SortKey = "name"
	SortByPaymentStatus SortKey = "payment_status"
	SortByStatus        SortKey = "registration_status"
)

var validSortKeys = map[SortKey]bool{
	SortByCreatedAt:     true,
	SortByName:          true,
	SortByPaymentStatus: true,
	SortByStatus:        true,
}

// Direction orders the sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query is the filter/sort/page state. It is purely a view projection and is
// never persisted server-side.
type Query struct {
	Search    string
	Status    string // a RegistrationStatus or StatusAll
	SortKey   SortKey
	Direction Direction
	Page      int // zero-based
	PerPage   int
}

// DefaultQuery returns the state a freshly opened console starts from.
func DefaultQuery() Query {
	return Query{
		Status:    StatusAll,
		SortKey:   SortByCreatedAt,
		Direction: Descending,
		Page:      0,
		PerPage:   10,
	}
}

// Normalize validates enum fields and clamps paging values.
func (q Query) Normalize() (Query, error) {
	if q.Status == "" {
		q.Status = StatusAll
	}
	if q.Status != StatusAll {
		if _, err := models.ParseRegistrationStatus(q.Status); err != nil {
			return q, err
		}
	}
	if q.SortKey == "" {
		q.SortKey = SortByCreatedAt
	}
	if !validSortKeys[q.SortKey] {
		return q, dErrors.Newf(dErrors.CodeInvalidInput, "invalid sort key %q", q.SortKey)
	}
	switch q.Direction {
	case "":
		q.Direction = Ascending
	case Ascending, Descending:
	default:
		return q, dErrors.Newf(dErrors.CodeInvalidInput, "invalid sort direction %q", q.Direction)
	}
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultQuery().PerPage
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	return q, nil
}

// View is one derived page plus the total count of matching records.
type View struct {
	Items []models.Registration
	Total int
}

// Derive recomputes the view from scratch in fixed order: search filter,
// status filter, stable sort, paginate. Equal sort keys never reorder
// relative to the raw list, so recomputation after any single query change
// is idempotent.
func Derive(raw []models.Registration, q Query) View {
	matched := make([]models.Registration, 0, len(raw))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range raw {
		if needle != "" && !matchesSearch(&r, needle) {
			continue
		}
		if q.Status != StatusAll && string(r.RegistrationStatus) != q.Status {
			continue
		}
		matched = append(matched, r.Clone())
	}

	less := comparator(q.SortKey)
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Direction == Descending {
			i, j = j, i
		}
		return less(&matched[i], &matched[j])
	})

	total := len(matched)
	start := q.Page * q.PerPage
	if start >= total {
		return View{Items: []models.Registration{}, Total: total}
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}
	return View{Items: matched[start:end], Total: total}
}

// matchesSearch checks the case-insensitive substring against the derived
// display name and the payment reference; either match passes.
func matchesSearch(r *models.Registration, needle string) bool {
	if strings.Contains(strings.ToLower(r.DisplayName()), needle) {
		return true
	}
	return r.PaymentReference != "" &&
		strings.Contains(strings.ToLower(r.PaymentReference), needle)
}

func comparator(key SortKey) func(a, b *models.Registration) bool {
	switch key {
	case SortByName:
		return func(a, b *models.Registration) bool {
			return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
		}
	case SortByPaymentStatus:
		return func(a, b *models.Registration) bool {
			return a.PaymentStatus < b.PaymentStatus
		}
	case SortByStatus:
		return func(a, b *models.Registration) bool {
			return a.RegistrationStatus < b.RegistrationStatus
		}
	default:
		return func(a, b *models.Registration) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
}
