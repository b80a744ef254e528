package domain

// SingleOrderStatus is the lifecycle state of a single order
type SingleOrderStatus string

const (
	SingleOrderDraft       SingleOrderStatus = "DRAFT"
	SingleOrderSeparating  SingleOrderStatus = "SEPARATING"
	SingleOrderReadyToScan SingleOrderStatus = "READY_TO_SCAN"
	SingleOrderScanning    SingleOrderStatus = "SCANNING"
	SingleOrderDone        SingleOrderStatus = "DONE"
)

// singleOrderNext is linear: each state has exactly one successor
var singleOrderNext = map[SingleOrderStatus]SingleOrderStatus{
	SingleOrderDraft:       SingleOrderSeparating,
	SingleOrderSeparating:  SingleOrderReadyToScan,
	SingleOrderReadyToScan: SingleOrderScanning,
	SingleOrderScanning:    SingleOrderDone,
}

// CanTransitionTo reports whether next directly follows s
func (s SingleOrderStatus) CanTransitionTo(next SingleOrderStatus) bool {
	n, ok := singleOrderNext[s]
	return ok && n == next
}

// IsTerminal reports whether s is DONE
func (s SingleOrderStatus) IsTerminal() bool {
	return s == SingleOrderDone
}

// CheckSingleOrderTransition returns an InvalidState error if id cannot move from current to next
func CheckSingleOrderTransition(id string, current, next SingleOrderStatus) error {
	if !current.CanTransitionTo(next) {
		return InvalidStatef("single order %s cannot move from %s to %s", id, current, next)
	}
	return nil
}
