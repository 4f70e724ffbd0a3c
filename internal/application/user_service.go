package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/policy"
	repo "github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/pagination"
)

// UserService holds the admin-only account operations.
type UserService struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Logger: logger}
}

// List pages through users, optionally narrowed to one role. An unknown role
// filter is ignored.
func (s *UserService) List(ctx context.Context, actor policy.Actor, role string, p pagination.Page) ([]entity.User, int, error) {
	if err := policy.Authorize(actor, policy.OpManageUsers, 0); err != nil {
		return nil, 0, err
	}
	f := repo.UserFilter{Limit: p.Limit(), Offset: p.Offset()}
	if r := entity.Role(strings.ToLower(strings.TrimSpace(role))); r.Valid() {
		f.Role = &r
	}
	users, total, err := s.Users.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return users, total, nil
}

// Create adds an account with any valid role.
func (s *UserService) Create(ctx context.Context, actor policy.Actor, in RegisterInput) (*entity.User, error) {
	if err := policy.Authorize(actor, policy.OpManageUsers, 0); err != nil {
		return nil, err
	}
	role := entity.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if !role.Valid() {
		return nil, apperror.Validation("invalid user data", map[string]string{"role": "must be one of: admin, guard, resident"})
	}
	u, err := createUser(ctx, s.Users, in, role)
	if err != nil {
		return nil, err
	}
	helpers.Component(s.Logger, "users").WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "by": actor.ID}).Info("user created")
	return u, nil
}

// SetActive flips the active flag. Admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor policy.Actor, id int64, active bool) (*entity.User, error) {
	if err := policy.Authorize(actor, policy.OpManageUsers, 0); err != nil {
		return nil, err
	}
	if id == actor.ID && !active {
		return nil, apperror.Validation("cannot deactivate your own account", nil)
	}
	u, err := s.Users.SetActive(ctx, id, active)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	helpers.Component(s.Logger, "users").WithFields(logrus.Fields{"user_id": id, "active": active, "by": actor.ID}).Info("user activation changed")
	return u, nil
}
