package entity

import "time"

type ParcelStatus string

const (
	ParcelReceived     ParcelStatus = "received"
	ParcelAcknowledged ParcelStatus = "acknowledged"
	ParcelCollected    ParcelStatus = "collected"
)

var ParcelLifecycle = NewLifecycle(
	[]ParcelStatus{ParcelReceived, ParcelAcknowledged, ParcelCollected},
	map[ParcelStatus][]ParcelStatus{
		ParcelReceived:     {ParcelAcknowledged},
		ParcelAcknowledged: {ParcelCollected},
	},
)

// ParcelPendingStatuses are parcels not yet collected.
var ParcelPendingStatuses = []ParcelStatus{ParcelReceived, ParcelAcknowledged}

// Parcel is a delivery held by security for a resident.
type Parcel struct {
	ID             int64
	ResidentID     int64
	ParcelNumber   string
	SenderName     string
	SenderPhone    *string
	Description    *string
	PhotoURL       *string
	Status         ParcelStatus
	ReceivedAt     *time.Time
	AcknowledgedAt *time.Time
	CollectedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stamp returns the timestamp field the status owns.
func (p *Parcel) Stamp(s ParcelStatus) *time.Time {
	switch s {
	case ParcelReceived:
		return p.ReceivedAt
	case ParcelAcknowledged:
		return p.AcknowledgedAt
	case ParcelCollected:
		return p.CollectedAt
	}
	return nil
}
