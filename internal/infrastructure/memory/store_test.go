package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/pkg/pagination"
)

func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &entity.User{FullName: "Zed", Email: "z@x.io", Role: entity.RoleResident, IsActive: true}))
	require.NoError(t, users.Create(ctx, &entity.User{FullName: "Amy", Email: "a@x.io", Role: entity.RoleResident, IsActive: true}))
	require.NoError(t, users.Create(ctx, &entity.User{FullName: "Bob", Email: "b@x.io", Role: entity.RoleResident}))
	require.NoError(t, users.Create(ctx, &entity.User{FullName: "Gus", Email: "g@x.io", Role: entity.RoleGuard, IsActive: true}))

	err := users.Create(ctx, &entity.User{FullName: "Dup", Email: "A@X.io"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	residents, err := users.ListActiveByRole(ctx, entity.RoleResident)
	require.NoError(t, err)
	require.Len(t, residents, 2)
	assert.Equal(t, "Amy", residents[0].FullName)
	assert.Equal(t, "Zed", residents[1].FullName)

	_, err = users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	u, err := users.SetActive(ctx, 3, true)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	role := entity.RoleGuard
	list, total, err := users.List(ctx, repository.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Gus", list[0].FullName)
}

func TestVisitorListOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	visitors := NewStore().WithClock(tickingClock()).Visitors()

	for i, resident := range []int64{10, 10, 11, 10} {
		v := &entity.Visitor{ResidentID: resident, Name: string(rune('A' + i)), Status: entity.VisitorNew}
		require.NoError(t, visitors.Create(ctx, v))
	}
	_, err := visitors.UpdateStatus(ctx, 1, repository.VisitorStatusUpdate{Status: entity.VisitorApproved})
	require.NoError(t, err)

	rid := int64(10)
	items, total, err := visitors.List(ctx, repository.VisitorFilter{ResidentID: &rid, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "D", items[0].Name)
	assert.Equal(t, "B", items[1].Name)

	n, err := visitors.CountByResident(ctx, 10, entity.VisitorPendingStatuses)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, _, err = visitors.List(ctx, repository.VisitorFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVisitorListOutOfRangeOffset(t *testing.T) {
	ctx := context.Background()
	visitors := NewStore().Visitors()
	require.NoError(t, visitors.Create(ctx, &entity.Visitor{ResidentID: 10, Name: "A", Status: entity.VisitorNew}))

	p := pagination.ParsePage("4611686018427387904", "20")
	items, total, err := visitors.List(ctx, repository.VisitorFilter{Limit: p.Limit(), Offset: p.Offset()})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, items)

	items, _, err = visitors.List(ctx, repository.VisitorFilter{Limit: 5, Offset: -20})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestVisitorTimestampsOverwriteOnlySupplied(t *testing.T) {
	ctx := context.Background()
	visitors := NewStore().Visitors()
	v := &entity.Visitor{ResidentID: 1, Name: "Budi", Status: entity.VisitorApproved}
	require.NoError(t, visitors.Create(ctx, v))

	t1 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	_, err := visitors.UpdateStatus(ctx, v.ID, repository.VisitorStatusUpdate{Status: entity.VisitorEntered, ArrivedAt: &t1, CheckedInAt: &t1})
	require.NoError(t, err)
	got, err := visitors.UpdateStatus(ctx, v.ID, repository.VisitorStatusUpdate{Status: entity.VisitorExited, CheckedOutAt: &t2})
	require.NoError(t, err)

	assert.Equal(t, entity.VisitorExited, got.Status)
	assert.Equal(t, t1, *got.ArrivedAt)
	assert.Equal(t, t1, *got.CheckedInAt)
	assert.Equal(t, t2, *got.CheckedOutAt)
}

func TestParcelStampFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	parcels := NewStore().Parcels()
	p := &entity.Parcel{ResidentID: 1, ParcelNumber: "PKG-1", SenderName: "Shop", Status: entity.ParcelReceived}
	require.NoError(t, parcels.Create(ctx, p))
	require.NotNil(t, p.ReceivedAt)

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := parcels.UpdateStatus(ctx, p.ID, repository.ParcelStatusUpdate{Status: entity.ParcelAcknowledged, At: first})
	require.NoError(t, err)
	got, err := parcels.UpdateStatus(ctx, p.ID, repository.ParcelStatusUpdate{Status: entity.ParcelAcknowledged, At: first.Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, first, *got.AcknowledgedAt)
	assert.Nil(t, got.CollectedAt)

	got, err = parcels.SetPhotoURL(ctx, p.ID, "https://cdn.test/p.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/p.jpg", *got.PhotoURL)
}
