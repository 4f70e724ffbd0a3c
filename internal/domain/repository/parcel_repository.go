package repository

import (
	"context"
	"time"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

type ParcelFilter struct {
	ResidentID *int64
	Statuses   []entity.ParcelStatus
	Limit      int
	Offset     int
}

// ParcelStatusUpdate sets a status and stamps its timestamp.
// An existing stamp is kept: the first write wins.
type ParcelStatusUpdate struct {
	Status entity.ParcelStatus
	At     time.Time
}

type ParcelRepository interface {
	Create(ctx context.Context, p *entity.Parcel) error
	GetByID(ctx context.Context, id int64) (*entity.Parcel, error)
	List(ctx context.Context, f ParcelFilter) ([]entity.Parcel, int, error)
	UpdateStatus(ctx context.Context, id int64, u ParcelStatusUpdate) (*entity.Parcel, error)
	SetPhotoURL(ctx context.Context, id int64, url string) (*entity.Parcel, error)
	CountByResident(ctx context.Context, residentID int64, statuses []entity.ParcelStatus) (int, error)
}
