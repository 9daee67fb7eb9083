package models

// Status is the lifecycle state shared by tasks and invoices.
//
// PRE_ORDER → IN_PROGRESS ⇄ CORRECTION ⇄ REVIEW → DELIVERED → BILLED → PAID
// with LOST reachable as a terminal abort from any non-delivered state.
type Status string

const (
	StatusPreOrder   Status = "PRE_ORDER"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCorrection Status = "CORRECTION"
	StatusReview     Status = "REVIEW"
	StatusDelivered  Status = "DELIVERED"
	StatusBilled     Status = "BILLED"
	StatusPaid       Status = "PAID"
	StatusLost       Status = "LOST"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPreOrder, StatusInProgress, StatusCorrection, StatusReview,
		StatusDelivered, StatusBilled, StatusPaid, StatusLost:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusLost
}

// working states a staff member may move a task between freely.
func (s Status) working() bool {
	switch s {
	case StatusPreOrder, StatusInProgress, StatusCorrection, StatusReview:
		return true
	}
	return false
}

// DeliveredEquivalent reports whether s counts as "delivered" for
// billing eligibility (the work left the production pipeline).
func (s Status) DeliveredEquivalent() bool {
	return s == StatusDelivered || s == StatusBilled || s == StatusPaid
}

// CanSelect reports whether staff may manually move a task from one
// status to another. DELIVERED is only reachable through the guarded
// delivery operation and BILLED only through billing consolidation;
// neither is ever manually selectable. LOST aborts anything not yet
// delivered. PAID follows BILLED.
func CanSelect(from, to Status) bool {
	if from == to || from.Terminal() {
		return false
	}
	switch to {
	case StatusDelivered, StatusBilled:
		return false
	case StatusLost:
		return !from.DeliveredEquivalent()
	case StatusPaid:
		return from == StatusBilled
	default:
		return from.working() && to.working()
	}
}
