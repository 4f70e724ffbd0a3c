package repository

import (
	"context"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

// UserFilter narrows user listings. A nil Role lists every role.
type UserFilter struct {
	Role   *entity.Role
	Limit  int
	Offset int
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create fills ID and timestamps; returns ErrDuplicateEmail on a taken email.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListActiveByRole returns active users of a role ordered by full name.
	ListActiveByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	List(ctx context.Context, f UserFilter) ([]entity.User, int, error)
	SetActive(ctx context.Context, id int64, active bool) (*entity.User, error)
}

// Pinger reports store reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
