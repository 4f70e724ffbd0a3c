package memory

import (
	"context"
	"sort"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type VisitorRepository struct{ s *Store }

var _ repository.VisitorRepository = (*VisitorRepository)(nil)

func copyVisitor(v *entity.Visitor) *entity.Visitor {
	c := *v
	c.Phone = cloneString(v.Phone)
	c.Purpose = cloneString(v.Purpose)
	c.ExpectedAt = cloneTime(v.ExpectedAt)
	c.ArrivedAt = cloneTime(v.ArrivedAt)
	c.CheckedInAt = cloneTime(v.CheckedInAt)
	c.CheckedOutAt = cloneTime(v.CheckedOutAt)
	return &c
}

func (r *VisitorRepository) Create(_ context.Context, v *entity.Visitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	v.ID = r.s.nextID()
	v.CreatedAt, v.UpdatedAt = now, now
	r.s.visitors[v.ID] = copyVisitor(v)
	return nil
}

func (r *VisitorRepository) GetByID(_ context.Context, id int64) (*entity.Visitor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.visitors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyVisitor(v), nil
}

func (r *VisitorRepository) matching(residentID *int64, statuses []entity.VisitorStatus) []entity.Visitor {
	out := make([]entity.Visitor, 0)
	for _, v := range r.s.visitors {
		if residentID != nil && v.ResidentID != *residentID {
			continue
		}
		if !containsStatus(statuses, v.Status) {
			continue
		}
		out = append(out, *copyVisitor(v))
	}
	return out
}

func (r *VisitorRepository) List(_ context.Context, f repository.VisitorFilter) ([]entity.Visitor, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.matching(f.ResidentID, f.Statuses)
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *VisitorRepository) UpdateStatus(_ context.Context, id int64, u repository.VisitorStatusUpdate) (*entity.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visitors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v.Status = u.Status
	if u.ArrivedAt != nil {
		v.ArrivedAt = cloneTime(u.ArrivedAt)
	}
	if u.CheckedInAt != nil {
		v.CheckedInAt = cloneTime(u.CheckedInAt)
	}
	if u.CheckedOutAt != nil {
		v.CheckedOutAt = cloneTime(u.CheckedOutAt)
	}
	v.UpdatedAt = r.s.now()
	return copyVisitor(v), nil
}

func (r *VisitorRepository) CountByResident(_ context.Context, residentID int64, statuses []entity.VisitorStatus) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(&residentID, statuses)), nil
}
