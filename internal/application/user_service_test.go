package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	repo "github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/pagination"
)

func userFilterAll() repo.UserFilter { return repo.UserFilter{} }

func TestAdminCreatesAnyRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, f.admin, RegisterInput{FullName: "Second Admin", Email: "admin2@example.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	_, err = f.users.Create(ctx, f.admin, RegisterInput{FullName: "X", Email: "x@example.com", Password: "secret1", Role: "owner"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.users.Create(ctx, f.guard, RegisterInput{FullName: "Y", Email: "y@example.com", Password: "secret1", Role: "guard"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestAdminListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, total, err := f.users.List(ctx, f.admin, "", pagination.ParsePage("", ""))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, all, 5)

	residents, total, err := f.users.List(ctx, f.admin, "resident", pagination.ParsePage("1", "1"))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, residents, 1)

	_, _, err = f.users.List(ctx, f.resident, "", pagination.ParsePage("", ""))
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestAdminSetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.SetActive(ctx, f.admin, f.resident.ID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = f.auth.Login(ctx, "resident@example.com", "secret1")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	_, err = f.users.SetActive(ctx, f.admin, f.admin.ID, false)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.users.SetActive(ctx, f.admin, 9999, true)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
