// Package memory keeps every repository in process memory. It backs
// STORE_DRIVER=memory and the service and HTTP tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	seq      int64
	users    map[int64]*entity.User
	visitors map[int64]*entity.Visitor
	parcels  map[int64]*entity.Parcel
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    map[int64]*entity.User{},
		visitors: map[int64]*entity.Visitor{},
		parcels:  map[int64]*entity.Parcel{},
	}
}

// WithClock replaces the time source; used by tests to get distinct created_at values.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Visitors() *VisitorRepository { return &VisitorRepository{s: s} }
func (s *Store) Parcels() *ParcelRepository   { return &ParcelRepository{s: s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// nextID must be called with the write lock held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsStatus[S comparable](set []S, s S) bool {
	if len(set) == 0 {
		return true
	}
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
