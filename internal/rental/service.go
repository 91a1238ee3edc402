package rental

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fleetrent/fleetrent-client/internal/session"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// API is the subset of the backend client the service needs.
// Interface for mocking in tests.
type API interface {
	FetchReservations(ctx context.Context, sess session.Session, filter FilterSpec) (*Page[Reservation], error)
	TransitionStatus(ctx context.Context, sess session.Session, id int64, target Status) (*Reservation, error)
}

// Service handles reservation listing and lifecycle transitions. A
// successful transition emits a data-changed signal so views re-fetch
// instead of trusting any local mutation.
type Service struct {
	api   API
	table TransitionTable

	mu   sync.Mutex
	subs []func()
}

// NewService creates a reservation service over the backend client.
func NewService(api API, table TransitionTable) *Service {
	if table == nil {
		table = DefaultTransitions()
	}
	return &Service{api: api, table: table}
}

// Table exposes the transition table driving action rendering.
func (s *Service) Table() TransitionTable {
	return s.table
}

// List fetches one page of reservations for the filter, applying page
// size defaults. The call is stateless; concurrent invocations for
// different filters are fine and stale-result handling is the caller's job.
func (s *Service) List(ctx context.Context, sess session.Session, filter FilterSpec) (*Page[Reservation], error) {
	if s.api == nil {
		return nil, fmt.Errorf("fetch reservations: api client is not initialized")
	}

	if filter.PageIndex < 0 {
		filter.PageIndex = 0
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	return s.api.FetchReservations(ctx, sess, filter)
}

// Transition moves a reservation to the target status via the backend.
// No local state changes on failure; on success subscribers are notified
// so the active listing re-fetches with its unchanged filter and page.
func (s *Service) Transition(ctx context.Context, sess session.Session, id int64, target Status) (*Reservation, error) {
	if s.api == nil {
		return nil, fmt.Errorf("update reservation status: api client is not initialized")
	}

	updated, err := s.api.TransitionStatus(ctx, sess, id, target)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("reservation_id", id).
		Str("status", string(updated.Status)).
		Msg("Reservation status updated")

	s.NotifyDataChanged()
	return updated, nil
}

// OnDataChanged registers a subscriber for the data-changed signal.
// Subscribers are invoked on the goroutine that triggered the change and
// should hand off anything slow.
func (s *Service) OnDataChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// NotifyDataChanged fires the data-changed signal. Also used by the live
// refresh feed when another manager changes a reservation.
func (s *Service) NotifyDataChanged() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
