package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/policy"
	"github.com/oksasatya/vpms/internal/infrastructure/memory"
	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/mailer"
)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.NotificationJob
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body.(mailer.NotificationJob))
	return nil
}

type memoryCache struct {
	mu     sync.Mutex
	counts map[string]int
	gens   map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{counts: map[string]int{}, gens: map[string]int64{}}
}

func cacheKey(kind string, id int64) string { return fmt.Sprintf("%s:%d", kind, id) }

func (c *memoryCache) Get(_ context.Context, kind string, id int64) (int, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(kind, id)
	n, ok := c.counts[k]
	return n, c.gens[k], ok
}

func (c *memoryCache) Set(_ context.Context, kind string, id int64, n int, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(kind, id)
	if c.gens[k] != gen {
		return nil
	}
	c.counts[k] = n
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, kind string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(kind, id)
	c.gens[k]++
	delete(c.counts, k)
	return nil
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	cache     *memoryCache
	metrics   *observability.Metrics
	auth      *AuthService
	users     *UserService
	visitors  *VisitorService
	parcels   *ParcelService

	admin, guard, resident, other policy.Actor
	inactive                      *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		publisher: &recordingPublisher{},
		cache:     newMemoryCache(),
		metrics:   observability.NewMetrics(),
	}
	effects := &Effects{
		Publisher: f.publisher,
		Cache:     f.cache,
		Metrics:   f.metrics,
		Logger:    helpers.NopLogger(),
		AppName:   "VPMS",
	}
	jwt := helpers.NewJWTManager("test-secret", 0)
	f.auth = NewAuthService(store.Users(), jwt, helpers.NopLogger())
	f.users = NewUserService(store.Users(), helpers.NopLogger())
	f.visitors = NewVisitorService(store.Visitors(), store.Users(), effects, false)
	f.parcels = NewParcelService(store.Parcels(), store.Users(), nil, effects, false)

	f.admin = f.seed(t, "Admin", "admin@example.com", entity.RoleAdmin, true)
	f.guard = f.seed(t, "Guard", "guard@example.com", entity.RoleGuard, true)
	f.resident = f.seed(t, "Resident Seven", "resident@example.com", entity.RoleResident, true)
	f.other = f.seed(t, "Other Resident", "other@example.com", entity.RoleResident, true)
	inactive := f.seed(t, "Gone Resident", "gone@example.com", entity.RoleResident, false)
	f.inactive, _ = store.Users().GetByID(context.Background(), inactive.ID)
	return f
}

func (f *fixture) seed(t *testing.T, name, email string, role entity.Role, active bool) policy.Actor {
	t.Helper()
	hash, err := helpers.HashPassword("secret1")
	require.NoError(t, err)
	u := &entity.User{FullName: name, Email: email, PasswordHash: hash, Role: role, IsActive: active}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return policy.ActorOf(u)
}

// transitionCount reads vpms_lifecycle_transitions_total for one label set.
func transitionCount(t *testing.T, f *fixture, entityName, from, to, declared string) float64 {
	t.Helper()
	families, err := f.metrics.Registry().Gather()
	require.NoError(t, err)
	want := map[string]string{"entity": entityName, "from": from, "to": to, "declared": declared}
	for _, mf := range families {
		if mf.GetName() != "vpms_lifecycle_transitions_total" {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
