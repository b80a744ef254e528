package domain

// LotStatus is the lifecycle state of a lot
type LotStatus string

const (
	LotDraft        LotStatus = "DRAFT"
	LotInProgress   LotStatus = "IN_PROGRESS"
	LotReadyForScan LotStatus = "READY_FOR_SCAN"
	LotClosing      LotStatus = "CLOSING"
	LotDone         LotStatus = "DONE"
)

// lotTransitions lists the states reachable from each lot state
var lotTransitions = map[LotStatus][]LotStatus{
	LotDraft:        {LotInProgress},
	LotInProgress:   {LotClosing, LotReadyForScan},
	LotReadyForScan: {LotClosing},
	LotClosing:      {LotDone},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s LotStatus) CanTransitionTo(next LotStatus) bool {
	for _, allowed := range lotTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s LotStatus) IsTerminal() bool {
	return s == LotDone
}

// Valid reports whether s is a known lot status
func (s LotStatus) Valid() bool {
	for _, known := range LotStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// LotStatuses lists every lot status in lifecycle order
func LotStatuses() []LotStatus {
	return []LotStatus{LotDraft, LotInProgress, LotReadyForScan, LotClosing, LotDone}
}

// CheckLotTransition returns an InvalidState error if lotCode cannot move from current to next
func CheckLotTransition(lotCode string, current, next LotStatus) error {
	if !current.CanTransitionTo(next) {
		return InvalidStatef("lot %s cannot move from %s to %s", lotCode, current, next)
	}
	return nil
}

// OrderStatus is the state of an order inside a lot
type OrderStatus string

const (
	OrderPending OrderStatus = "PENDING"
	OrderSealed  OrderStatus = "SEALED"
)

// WorkMode says whether one worker does the whole lot or roles are split
type WorkMode string

const (
	WorkModeGeneral   WorkMode = "GERAL"
	WorkModeSeparator WorkMode = "SEPARADOR"
	WorkModeScanner   WorkMode = "BIPADOR"
)

// Valid reports whether m is a known work mode
func (m WorkMode) Valid() bool {
	switch m {
	case WorkModeGeneral, WorkModeSeparator, WorkModeScanner:
		return true
	}
	return false
}

// PreassignsSeparator reports whether the creator becomes the separator at import time
func (m WorkMode) PreassignsSeparator() bool {
	return m == WorkModeGeneral || m == WorkModeSeparator
}

// AssignmentType describes how an admin-created lot is assigned
type AssignmentType string

const (
	AssignmentOpen      AssignmentType = "OPEN"
	AssignmentGeneral   AssignmentType = "ASSIGNED_GENERAL"
	AssignmentSeparated AssignmentType = "ASSIGNED_SEPARATED"
)

// Valid reports whether t is a known assignment type
func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentOpen, AssignmentGeneral, AssignmentSeparated:
		return true
	}
	return false
}

// Role of an application user
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleEstoquista Role = "ESTOQUISTA"
)

// Identity is the acting user as supplied by the identity provider
type Identity struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
