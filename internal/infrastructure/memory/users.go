package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Phone = cloneString(u.Phone)
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	now := r.s.now()
	u.ID = r.s.nextID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) ListActiveByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if u.IsActive && u.Role == role {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName == out[j].FullName {
			return out[i].ID < out[j].ID
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

func (r *UserRepository) List(_ context.Context, f repository.UserFilter) ([]entity.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]entity.User, 0)
	for _, u := range r.s.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		all = append(all, *copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *UserRepository) SetActive(_ context.Context, id int64, active bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}
