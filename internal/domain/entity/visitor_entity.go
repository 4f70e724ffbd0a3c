package entity

import "time"

type VisitorStatus string

const (
	VisitorNew             VisitorStatus = "new"
	VisitorWaitingApproval VisitorStatus = "waiting_approval"
	VisitorApproved        VisitorStatus = "approved"
	VisitorRejected        VisitorStatus = "rejected"
	VisitorEntered         VisitorStatus = "entered"
	VisitorExited          VisitorStatus = "exited"
)

// VisitorLifecycle declares the intended flow. Enforcement is a service option.
var VisitorLifecycle = NewLifecycle(
	[]VisitorStatus{VisitorNew, VisitorWaitingApproval, VisitorApproved, VisitorRejected, VisitorEntered, VisitorExited},
	map[VisitorStatus][]VisitorStatus{
		VisitorNew:             {VisitorWaitingApproval},
		VisitorWaitingApproval: {VisitorApproved, VisitorRejected},
		VisitorApproved:        {VisitorEntered},
		VisitorEntered:         {VisitorExited},
	},
)

// VisitorPendingStatuses are the statuses a resident still has to act on.
var VisitorPendingStatuses = []VisitorStatus{VisitorNew, VisitorWaitingApproval}

// Visitor is a guest registered at the gate for a resident.
type Visitor struct {
	ID           int64
	ResidentID   int64
	Name         string
	Phone        *string
	Purpose      *string
	Status       VisitorStatus
	ExpectedAt   *time.Time
	ArrivedAt    *time.Time
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
