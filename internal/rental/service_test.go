package rental

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetrent/fleetrent-client/internal/session"
)

type fakeAPI struct {
	listFilters   []FilterSpec
	listResult    *Page[Reservation]
	listErr       error
	transitionID  int64
	transitionTo  Status
	transitionRes *Reservation
	transitionErr error
}

func (f *fakeAPI) FetchReservations(ctx context.Context, sess session.Session, filter FilterSpec) (*Page[Reservation], error) {
	f.listFilters = append(f.listFilters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &Page[Reservation]{PageIndex: filter.PageIndex}, nil
}

func (f *fakeAPI) TransitionStatus(ctx context.Context, sess session.Session, id int64, target Status) (*Reservation, error) {
	f.transitionID = id
	f.transitionTo = target
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	if f.transitionRes != nil {
		return f.transitionRes, nil
	}
	return &Reservation{ID: id, Status: target}, nil
}

func TestListAppliesPageSizeDefaults(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil)
	sess := session.New("token", session.RoleManager, "u1")

	if _, err := svc.List(context.Background(), sess, FilterSpec{PageIndex: -2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(context.Background(), sess, FilterSpec{PageSize: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := api.listFilters[0]; got.PageIndex != 0 || got.PageSize != 20 {
		t.Fatalf("expected defaults page=0 size=20, got %+v", got)
	}
	if got := api.listFilters[1]; got.PageSize != 100 {
		t.Fatalf("expected page size clamped to 100, got %d", got.PageSize)
	}
}

func TestTransitionNotifiesSubscribers(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil)
	sess := session.New("token", session.RoleManager, "u1")

	notified := 0
	svc.OnDataChanged(func() { notified++ })

	updated, err := svc.Transition(context.Background(), sess, 42, StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.transitionID != 42 || api.transitionTo != StatusConfirmed {
		t.Fatalf("expected transition(42, CONFIRMED), got (%d, %s)", api.transitionID, api.transitionTo)
	}
	if updated.Status != StatusConfirmed {
		t.Fatalf("expected updated reservation, got %+v", updated)
	}
	if notified != 1 {
		t.Fatalf("expected one data-changed signal, got %d", notified)
	}
}

func TestTransitionFailureEmitsNoSignal(t *testing.T) {
	api := &fakeAPI{transitionErr: errors.New("Reservation already cancelled")}
	svc := NewService(api, nil)
	sess := session.New("token", session.RoleManager, "u1")

	notified := 0
	svc.OnDataChanged(func() { notified++ })

	_, err := svc.Transition(context.Background(), sess, 7, StatusConfirmed)
	if err == nil {
		t.Fatal("expected error")
	}
	if notified != 0 {
		t.Fatalf("rejected transition must not signal, got %d notifications", notified)
	}
}
