package rental

import (
	"testing"

	"github.com/fleetrent/fleetrent-client/internal/session"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "CONFIRMED", "PAID", "ACTIVE", "COMPLETED", "CANCELLED", "NO_SHOW"} {
		status, err := ParseStatus(valid)
		if err != nil {
			t.Fatalf("expected %s to parse, got %v", valid, err)
		}
		if string(status) != valid {
			t.Fatalf("expected %s, got %s", valid, status)
		}
	}

	for _, invalid := range []string{"", "pending", "BOOKED", "DONE"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestDefaultTransitions(t *testing.T) {
	table := DefaultTransitions()

	cases := []struct {
		from Status
		next []Status
	}{
		{StatusPending, []Status{StatusConfirmed, StatusCancelled}},
		{StatusConfirmed, []Status{StatusActive, StatusCancelled}},
		{StatusPaid, []Status{StatusActive, StatusNoShow}},
		{StatusActive, []Status{StatusCompleted}},
		{StatusCompleted, nil},
		{StatusCancelled, nil},
		{StatusNoShow, nil},
	}

	for _, tc := range cases {
		got := table.Next(tc.from)
		if len(got) != len(tc.next) {
			t.Fatalf("%s: expected %v, got %v", tc.from, tc.next, got)
		}
		for i := range tc.next {
			if got[i] != tc.next[i] {
				t.Fatalf("%s: expected %v, got %v", tc.from, tc.next, got)
			}
		}

		for _, to := range tc.next {
			if !table.Allowed(tc.from, to) {
				t.Fatalf("expected %s -> %s to be allowed", tc.from, to)
			}
		}
		if table.Terminal(tc.from) != (len(tc.next) == 0) {
			t.Fatalf("%s: wrong terminal classification", tc.from)
		}
	}

	if table.Allowed(StatusPending, StatusCompleted) {
		t.Fatal("PENDING -> COMPLETED must not be allowed")
	}
	if table.Allowed(StatusCancelled, StatusPending) {
		t.Fatal("terminal states must have no outgoing transitions")
	}
}

func TestVisibleActionsForManager(t *testing.T) {
	table := DefaultTransitions()

	cases := []struct {
		status Status
		labels []string
	}{
		{StatusPending, []string{"Confirm", "Cancel"}},
		{StatusConfirmed, []string{"Make Active", "Cancel"}},
		{StatusPaid, []string{"Make Active", "No Show"}},
		{StatusActive, []string{"Complete"}},
		{StatusCompleted, nil},
		{StatusCancelled, nil},
		{StatusNoShow, nil},
	}

	for _, tc := range cases {
		actions := table.VisibleActions(tc.status, session.RoleManager)
		if len(actions) != len(tc.labels) {
			t.Fatalf("%s: expected %v, got %v", tc.status, tc.labels, actions)
		}
		for i, label := range tc.labels {
			if actions[i].Label != label {
				t.Fatalf("%s: expected label %q, got %q", tc.status, label, actions[i].Label)
			}
		}
	}
}

func TestVisibleActionsGatedByRole(t *testing.T) {
	table := DefaultTransitions()

	for _, role := range []session.Role{session.RoleClient, session.Role(""), session.Role("AUDITOR")} {
		if actions := table.VisibleActions(StatusPending, role); actions != nil {
			t.Fatalf("role %q: expected no actions, got %v", role, actions)
		}
	}
}
