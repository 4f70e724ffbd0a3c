package repository

import (
	"context"
	"time"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

// VisitorFilter narrows visitor listings. Results are newest first.
// Limit <= 0 means no limit.
type VisitorFilter struct {
	ResidentID *int64
	Statuses   []entity.VisitorStatus
	Limit      int
	Offset     int
}

// VisitorStatusUpdate sets a status and overwrites only the timestamps supplied.
type VisitorStatusUpdate struct {
	Status       entity.VisitorStatus
	ArrivedAt    *time.Time
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
}

type VisitorRepository interface {
	Create(ctx context.Context, v *entity.Visitor) error
	GetByID(ctx context.Context, id int64) (*entity.Visitor, error)
	// List returns one page plus the total matching the filter.
	List(ctx context.Context, f VisitorFilter) ([]entity.Visitor, int, error)
	UpdateStatus(ctx context.Context, id int64, u VisitorStatusUpdate) (*entity.Visitor, error)
	CountByResident(ctx context.Context, residentID int64, statuses []entity.VisitorStatus) (int, error)
}
