package models

import (
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/scoring"
)

// Lot is a batch of orders picked together
type Lot struct {
	LotCode     string           `gorm:"primaryKey;size:8" json:"lotCode"`
	Status      domain.LotStatus `gorm:"size:20;not null;index" json:"status"`
	Cycle       string           `gorm:"size:64" json:"cycle"`
	TotalOrders int              `gorm:"not null" json:"totalOrders"`
	TotalItems  int              `gorm:"not null" json:"totalItems"`
	WorkMode    domain.WorkMode  `gorm:"size:16;not null" json:"workMode"`

	StartAt         *time.Time `json:"startAt,omitempty"`
	EndAt           *time.Time `gorm:"index" json:"endAt,omitempty"`
	ScanStartAt     *time.Time `json:"scanStartAt,omitempty"`
	ScanEndAt       *time.Time `json:"scanEndAt,omitempty"`
	DurationMs      int64      `json:"durationMs"`
	ScanDurationMs  int64      `json:"scanDurationMs"`
	TotalDurationMs int64      `json:"totalDurationMs"`

	XPEarned          int `json:"xpEarned"`
	SeparatorXPEarned int `json:"separatorXpEarned"`
	ScannerXPEarned   int `json:"scannerXpEarned"`

	CreatedByUID  string `gorm:"size:128;not null;index" json:"createdByUid"`
	CreatedByName string `gorm:"size:255" json:"createdByName"`
	SeparatorUID  string `gorm:"size:128;index" json:"separatorUid,omitempty"`
	SeparatorName string `gorm:"size:255" json:"separatorName,omitempty"`
	ScannerUID    string `gorm:"size:128;index" json:"scannerUid,omitempty"`
	ScannerName   string `gorm:"size:255" json:"scannerName,omitempty"`

	AssignmentType        domain.AssignmentType `gorm:"size:32" json:"assignmentType,omitempty"`
	AssignedGeneralUID    string                `gorm:"size:128" json:"assignedGeneralUid,omitempty"`
	AssignedGeneralName   string                `gorm:"size:255" json:"assignedGeneralName,omitempty"`
	AssignedSeparatorUID  string                `gorm:"size:128" json:"assignedSeparatorUid,omitempty"`
	AssignedSeparatorName string                `gorm:"size:255" json:"assignedSeparatorName,omitempty"`
	AssignedScannerUID    string                `gorm:"size:128" json:"assignedScannerUid,omitempty"`
	AssignedScannerName   string                `gorm:"size:255" json:"assignedScannerName,omitempty"`
	IsAdminCreated        bool                  `gorm:"not null;default:false" json:"isAdminCreated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Totals returns the counts frozen at import time
func (l *Lot) Totals() scoring.Totals {
	return scoring.Totals{Orders: l.TotalOrders, Items: l.TotalItems}
}

// IsSplit reports whether separation and scanning were done by different users
func (l *Lot) IsSplit() bool {
	return l.WorkMode == domain.WorkModeSeparator && l.ScannerUID != "" && l.ScannerUID != l.SeparatorUID
}

// LotOrder is one customer order inside a lot. OrderCode is unique system-wide.
type LotOrder struct {
	OrderCode  string             `gorm:"primaryKey;size:9" json:"orderCode"`
	LotCode    string             `gorm:"size:8;not null;index" json:"lotCode"`
	Cycle      string             `gorm:"size:64" json:"cycle"`
	ApprovedAt *time.Time         `json:"approvedAt,omitempty"`
	Items      int                `gorm:"not null" json:"items"`
	Status     domain.OrderStatus `gorm:"size:16;not null;index" json:"status"`
	SealedCode *string            `gorm:"size:10" json:"sealedCode,omitempty"`
	SealedAt   *time.Time         `json:"sealedAt,omitempty"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"createdAt"`
}

// SingleOrder is a one-off order processed end to end by one worker
type SingleOrder struct {
	ID        string                   `gorm:"primaryKey;size:64" json:"id"`
	OrderCode string                   `gorm:"size:9;not null;uniqueIndex" json:"orderCode"`
	Cycle     string                   `gorm:"size:64" json:"cycle"`
	Items     int                      `gorm:"not null" json:"items"`
	Status    domain.SingleOrderStatus `gorm:"size:20;not null;index" json:"status"`

	SeparationStartAt    *time.Time `json:"separationStartAt,omitempty"`
	SeparationEndAt      *time.Time `json:"separationEndAt,omitempty"`
	SeparationDurationMs int64      `json:"separationDurationMs"`
	ScanStartAt          *time.Time `json:"scanStartAt,omitempty"`
	ScanEndAt            *time.Time `json:"scanEndAt,omitempty"`
	ScanDurationMs       int64      `json:"scanDurationMs"`
	TotalDurationMs      int64      `json:"totalDurationMs"`

	SealedCode *string    `gorm:"size:10" json:"sealedCode,omitempty"`
	SealedAt   *time.Time `json:"sealedAt,omitempty"`
	XPEarned   int        `json:"xpEarned"`

	CreatedByUID  string    `gorm:"size:128;not null;index" json:"createdByUid"`
	CreatedByName string    `gorm:"size:255" json:"createdByName"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OrderCode claims an order code for exactly one lot or single order. Its
// primary key makes lot imports and single orders share one namespace.
type OrderCode struct {
	OrderCode     string    `gorm:"primaryKey;size:9" json:"orderCode"`
	LotCode       *string   `gorm:"size:8;index" json:"lotCode,omitempty"`
	SingleOrderID *string   `gorm:"size:64" json:"singleOrderId,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// SealedCode reserves a seal code for exactly one order in the whole system
type SealedCode struct {
	SealedCode    string    `gorm:"primaryKey;size:10" json:"sealedCode"`
	OrderCode     string    `gorm:"size:9;not null" json:"orderCode"`
	LotCode       *string   `gorm:"size:8;index" json:"lotId,omitempty"`
	SingleOrderID *string   `gorm:"size:64;index" json:"singleOrderId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// User is an application user with accumulated XP
type User struct {
	UID              string      `gorm:"primaryKey;size:128" json:"uid"`
	Name             string      `gorm:"size:255" json:"name"`
	Email            string      `gorm:"size:255" json:"email,omitempty"`
	Role             domain.Role `gorm:"size:16;not null" json:"role"`
	XPTotal          int64       `gorm:"not null;default:0;index" json:"xpTotal"`
	Streak           int         `gorm:"not null;default:0" json:"streak"`
	LastActivityDate string      `gorm:"size:10" json:"lastActivityDate,omitempty"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// PickingRulesID is the key of the singleton rules row
const PickingRulesID = "default"

// PickingRules is the stored scoring configuration
type PickingRules struct {
	ID                     string    `gorm:"primaryKey;size:32"`
	XPBasePerLot           int       `gorm:"not null"`
	XPPerOrder             int       `gorm:"not null"`
	XPPerItem              int       `gorm:"not null"`
	SpeedTargetItemsPerMin float64   `gorm:"not null"`
	Bonus10Threshold       float64   `gorm:"not null"`
	Bonus20Threshold       float64   `gorm:"not null"`
	UpdatedBy              string    `gorm:"size:128"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

// ToRules converts the stored row into engine rules
func (p *PickingRules) ToRules() scoring.Rules {
	return scoring.Rules{
		XPBasePerLot:           p.XPBasePerLot,
		XPPerOrder:             p.XPPerOrder,
		XPPerItem:              p.XPPerItem,
		SpeedTargetItemsPerMin: p.SpeedTargetItemsPerMin,
		Bonus10Threshold:       p.Bonus10Threshold,
		Bonus20Threshold:       p.Bonus20Threshold,
	}
}

// NewPickingRules builds the singleton row from engine rules
func NewPickingRules(r scoring.Rules, updatedBy string) *PickingRules {
	return &PickingRules{
		ID:                     PickingRulesID,
		XPBasePerLot:           r.XPBasePerLot,
		XPPerOrder:             r.XPPerOrder,
		XPPerItem:              r.XPPerItem,
		SpeedTargetItemsPerMin: r.SpeedTargetItemsPerMin,
		Bonus10Threshold:       r.Bonus10Threshold,
		Bonus20Threshold:       r.Bonus20Threshold,
		UpdatedBy:              updatedBy,
	}
}

// TaskType is an admin-defined kind of ad hoc work that earns XP
type TaskType struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	XP        int       `gorm:"not null" json:"xp"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TaskLog records a worker performing a task
type TaskLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UID        string    `gorm:"size:128;not null;index" json:"uid"`
	UserName   string    `gorm:"size:255" json:"userName"`
	TaskTypeID string    `gorm:"size:36;not null;index" json:"taskTypeId"`
	TaskName   string    `gorm:"size:255" json:"taskName"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	XPEarned   int       `gorm:"not null" json:"xpEarned"`
	Note       string    `gorm:"size:1024" json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Aggregate types for activity events
const (
	AggregateLot         = "lot"
	AggregateSingleOrder = "single_order"
	AggregateTaskLog     = "task_log"
)

// ActivityEvent is an append-only record of a state change, projected into search by the worker
type ActivityEvent struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AggregateType string    `gorm:"size:32;not null;index:idx_activity_aggregate" json:"aggregateType"`
	AggregateID   string    `gorm:"size:64;not null;index:idx_activity_aggregate" json:"aggregateId"`
	EventType     string    `gorm:"size:64;not null" json:"eventType"`
	ActorUID      string    `gorm:"size:128" json:"actorUid,omitempty"`
	Data          []byte    `json:"data"`
	Indexed       bool      `gorm:"not null;default:false;index" json:"indexed"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

// All lists every model for migrations
func All() []interface{} {
	return []interface{}{
		&Lot{},
		&LotOrder{},
		&SingleOrder{},
		&OrderCode{},
		&SealedCode{},
		&User{},
		&PickingRules{},
		&TaskType{},
		&TaskLog{},
		&ActivityEvent{},
	}
}
