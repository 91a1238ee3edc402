// Package listing holds the view-model behind the reservation list: the
// current filter, the current page, and the per-row actions derived from
// the transition table. It owns no business rules; everything it shows
// comes from the backend via the query service.
package listing

import (
	"context"
	"sync"

	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/session"
)

// QueryService fetches pages of reservations. Interface for mocking in tests.
type QueryService interface {
	List(ctx context.Context, sess session.Session, filter rental.FilterSpec) (*rental.Page[rental.Reservation], error)
}

// Row is one rendered reservation with its action buttons.
type Row struct {
	Reservation rental.Reservation
	Actions     []rental.Action
}

// Listing drives the paginated reservation view. Fetches may overlap when
// the user flips filters or pages quickly; every fetch carries a
// generation number and only the most recently issued one may update the
// view, so a slow early response can never overwrite a newer one.
type Listing struct {
	svc      QueryService
	sess     session.Session
	table    rental.TransitionTable
	pageSize int
	onUpdate func()

	mu     sync.Mutex
	filter rental.FilterSpec
	page   *rental.Page[rental.Reservation]
	err    error
	gen    uint64 // latest issued fetch generation
}

// New creates a listing for the session. onUpdate is invoked after every
// applied fetch result (success or failure); it may be nil.
func New(svc QueryService, sess session.Session, table rental.TransitionTable, pageSize int, onUpdate func()) *Listing {
	if table == nil {
		table = rental.DefaultTransitions()
	}
	return &Listing{
		svc:      svc,
		sess:     sess,
		table:    table,
		pageSize: pageSize,
		onUpdate: onUpdate,
		filter:   rental.ResetFilter(pageSize),
	}
}

// Refresh fetches the page for the current filter. Safe to call from any
// goroutine; if a newer refresh is issued before this one completes, the
// late result is discarded.
func (l *Listing) Refresh(ctx context.Context) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	filter := l.filter
	l.mu.Unlock()

	page, err := l.svc.List(ctx, l.sess, filter)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return // a newer request owns the view now
	}
	if err != nil {
		l.err = err
	} else {
		l.err = nil
		l.page = page
	}
	onUpdate := l.onUpdate
	l.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}

// SubmitFilter applies validated form values as the new filter, resetting
// the page index to 0. Returns field errors on invalid input; the caller
// refreshes on success.
func (l *Listing) SubmitFilter(v rental.FormValues) map[string]string {
	filter, errs := rental.SubmitFilter(v, l.pageSize)
	if errs != nil {
		return errs
	}
	l.mu.Lock()
	l.filter = filter
	l.mu.Unlock()
	return nil
}

// ResetFilter restores the "show all" filter.
func (l *Listing) ResetFilter() {
	l.mu.Lock()
	l.filter = rental.ResetFilter(l.pageSize)
	l.mu.Unlock()
}

// Filter returns the filter currently driving the view.
func (l *Listing) Filter() rental.FilterSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// NextPage advances the page index when a next page exists. Only the page
// index moves; filter criteria are untouched. Reports whether it moved.
func (l *Listing) NextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canNextLocked() {
		return false
	}
	l.filter = l.filter.WithPage(l.filter.PageIndex + 1)
	return true
}

// PrevPage moves back one page when not already on the first.
func (l *Listing) PrevPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canPrevLocked() {
		return false
	}
	l.filter = l.filter.WithPage(l.filter.PageIndex - 1)
	return true
}

// CanPrev reports whether the Previous control is enabled.
func (l *Listing) CanPrev() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canPrevLocked()
}

// CanNext reports whether the Next control is enabled.
func (l *Listing) CanNext() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canNextLocked()
}

func (l *Listing) canPrevLocked() bool {
	if l.page == nil || l.page.TotalPages == 0 {
		return false
	}
	return l.filter.PageIndex > 0
}

func (l *Listing) canNextLocked() bool {
	if l.page == nil || l.page.TotalPages == 0 {
		return false
	}
	return l.filter.PageIndex+1 < l.page.TotalPages
}

// Rows derives the visible rows with their role-gated action buttons.
// Pure over the current page: the same page always yields the same rows.
func (l *Listing) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.page == nil {
		return nil
	}
	rows := make([]Row, 0, len(l.page.Items))
	for _, res := range l.page.Items {
		rows = append(rows, Row{
			Reservation: res,
			Actions:     l.table.VisibleActions(res.Status, l.sess.Role),
		})
	}
	return rows
}

// Empty reports whether the view should show the placeholder row instead
// of a table.
func (l *Listing) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page == nil || len(l.page.Items) == 0
}

// Page returns the current page metadata, or nil before the first fetch.
func (l *Listing) Page() *rental.Page[rental.Reservation] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Err returns the error from the latest applied fetch, if any. Errors are
// presented by the hosting view, never swallowed here.
func (l *Listing) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
