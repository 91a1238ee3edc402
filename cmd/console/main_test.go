package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fleetrent/fleetrent-client/internal/config"
	"github.com/fleetrent/fleetrent-client/internal/listing"
	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/session"
)

// rejectingAPI serves one PENDING reservation and rejects every transition.
type rejectingAPI struct{}

func (rejectingAPI) FetchReservations(ctx context.Context, sess session.Session, filter rental.FilterSpec) (*rental.Page[rental.Reservation], error) {
	return &rental.Page[rental.Reservation]{
		Items:         []rental.Reservation{{ID: 1, Status: rental.StatusPending}},
		TotalPages:    1,
		TotalElements: 1,
	}, nil
}

func (rejectingAPI) TransitionStatus(ctx context.Context, sess session.Session, id int64, target rental.Status) (*rental.Reservation, error) {
	return nil, errors.New("update reservation status: Reservation already cancelled (status=409)")
}

func TestTransitionFailureDeliveredToEventLoop(t *testing.T) {
	svc := rental.NewService(rejectingAPI{}, nil)
	sess := session.New("token", session.RoleManager, "u1")

	a := &app{
		cfg:     &config.Config{PageSize: 20},
		table:   rental.DefaultTransitions(),
		sess:    sess,
		svc:     svc,
		updates: make(chan struct{}, 1),
		errs:    make(chan error, 4),
	}
	a.list = listing.New(svc, sess, a.table, a.cfg.PageSize, a.notify)
	a.list.Refresh(context.Background())

	a.transition([]string{"1"}, rental.StatusCancelled)

	// The failure must arrive as an event for the loop to print, never be
	// written to the screen from the transition goroutine.
	select {
	case err := <-a.errs:
		if !strings.Contains(err.Error(), "Reservation already cancelled") {
			t.Fatalf("unexpected error delivered: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the transition failure on the error channel")
	}
}
