package rental

import "github.com/fleetrent/fleetrent-client/internal/session"

// Action is one status-transition button offered for a reservation row.
type Action struct {
	Label  string
	Target Status
}

var actionLabels = map[Status]string{
	StatusConfirmed: "Confirm",
	StatusCancelled: "Cancel",
	StatusActive:    "Make Active",
	StatusNoShow:    "No Show",
	StatusCompleted: "Complete",
}

// VisibleActions returns the actions to render for a reservation in the
// given status, gated by role. Only managers drive the lifecycle; everyone
// else gets no buttons. This is a rendering-time filter, not validation:
// the backend may still reject the transition.
func (t TransitionTable) VisibleActions(from Status, role session.Role) []Action {
	if role != session.RoleManager {
		return nil
	}
	next := t.Next(from)
	if len(next) == 0 {
		return nil
	}
	actions := make([]Action, 0, len(next))
	for _, target := range next {
		actions = append(actions, Action{Label: actionLabels[target], Target: target})
	}
	return actions
}
