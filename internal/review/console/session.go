package console

import (
	"sync"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
)

// Console is the live view state for one event's registration list. It owns
// the raw list exclusively: a refetch replaces it wholesale, and switching
// events builds a new Console (the old list is never merged into the new one).
type Console struct {
	mu      sync.Mutex
	eventID id.EventID
	raw     []models.Registration
	query   Query
}

// New builds a console over a freshly fetched raw list with default
// filter/sort/page state.
func New(eventID id.EventID, raw []models.Registration) *Console {
	return &Console{
		eventID: eventID,
		raw:     cloneAll(raw),
		query:   DefaultQuery(),
	}
}

// EventID returns the event this console was opened for.
func (c *Console) EventID() id.EventID { return c.eventID }

// Replace swaps in a newly fetched raw list, keeping the query state. Used
// after the authoritative refetch that follows a review decision.
func (c *Console) Replace(raw []models.Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = cloneAll(raw)
}

// SetQuery applies a requested query. Whenever search text, status filter, or
// page size differ from the current state, the page index resets to zero so
// the view can never show an out-of-range page. Returns the applied query.
func (c *Console) SetQuery(q Query) (Query, error) {
	q, err := q.Normalize()
	if err != nil {
		return q, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if q.Search != c.query.Search || q.Status != c.query.Status || q.PerPage != c.query.PerPage {
		q.Page = 0
	}
	c.query = q
	return q, nil
}

// Query returns the current filter/sort/page state.
func (c *Console) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// View derives the current page from the raw list and query state.
func (c *Console) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Derive(c.raw, c.query)
}

// Filtered derives all matching rows under the current search and status
// filters, ignoring pagination. The export projector consumes this.
func (c *Console) Filtered() []models.Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.query
	q.Page = 0
	q.PerPage = len(c.raw)
	if q.PerPage == 0 {
		q.PerPage = 1
	}
	return Derive(c.raw, q).Items
}

func cloneAll(raw []models.Registration) []models.Registration {
	out := make([]models.Registration, len(raw))
	for i := range raw {
		out[i] = raw[i].Clone()
	}
	return out
}
