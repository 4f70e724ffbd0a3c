package memory

import (
	"context"
	"sort"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type ParcelRepository struct{ s *Store }

var _ repository.ParcelRepository = (*ParcelRepository)(nil)

func copyParcel(p *entity.Parcel) *entity.Parcel {
	c := *p
	c.SenderPhone = cloneString(p.SenderPhone)
	c.Description = cloneString(p.Description)
	c.PhotoURL = cloneString(p.PhotoURL)
	c.ReceivedAt = cloneTime(p.ReceivedAt)
	c.AcknowledgedAt = cloneTime(p.AcknowledgedAt)
	c.CollectedAt = cloneTime(p.CollectedAt)
	return &c
}

func (r *ParcelRepository) Create(_ context.Context, p *entity.Parcel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	p.ID = r.s.nextID()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.ReceivedAt == nil {
		p.ReceivedAt = &now
	}
	r.s.parcels[p.ID] = copyParcel(p)
	return nil
}

func (r *ParcelRepository) GetByID(_ context.Context, id int64) (*entity.Parcel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyParcel(p), nil
}

func (r *ParcelRepository) matching(residentID *int64, statuses []entity.ParcelStatus) []entity.Parcel {
	out := make([]entity.Parcel, 0)
	for _, p := range r.s.parcels {
		if residentID != nil && p.ResidentID != *residentID {
			continue
		}
		if !containsStatus(statuses, p.Status) {
			continue
		}
		out = append(out, *copyParcel(p))
	}
	return out
}

func (r *ParcelRepository) List(_ context.Context, f repository.ParcelFilter) ([]entity.Parcel, int, error) {
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

func (r *ParcelRepository) UpdateStatus(_ context.Context, id int64, u repository.ParcelStatusUpdate) (*entity.Parcel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Status = u.Status
	at := u.At
	switch u.Status {
	case entity.ParcelReceived:
		if p.ReceivedAt == nil {
			p.ReceivedAt = &at
		}
	case entity.ParcelAcknowledged:
		if p.AcknowledgedAt == nil {
			p.AcknowledgedAt = &at
		}
	case entity.ParcelCollected:
		if p.CollectedAt == nil {
			p.CollectedAt = &at
		}
	}
	p.UpdatedAt = r.s.now()
	return copyParcel(p), nil
}

func (r *ParcelRepository) SetPhotoURL(_ context.Context, id int64, url string) (*entity.Parcel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.PhotoURL = &url
	p.UpdatedAt = r.s.now()
	return copyParcel(p), nil
}

func (r *ParcelRepository) CountByResident(_ context.Context, residentID int64, statuses []entity.ParcelStatus) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(&residentID, statuses)), nil
}
