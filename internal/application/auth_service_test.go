package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/pkg/apperror"
)

func TestRegisterRoleDowngrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]entity.Role{
		"":         entity.RoleResident,
		"resident": entity.RoleResident,
		"guard":    entity.RoleGuard,
		"admin":    entity.RoleResident,
		"janitor":  entity.RoleResident,
	}
	i := 0
	for requested, want := range cases {
		i++
		res, err := f.auth.Register(ctx, RegisterInput{
			FullName: "  New User ",
			Email:    "user" + string(rune('a'+i)) + "@example.com",
			Password: "secret1",
			Role:     requested,
		})
		require.NoError(t, err, requested)
		assert.Equal(t, want, res.User.Role, requested)
		assert.True(t, res.User.IsActive)
		assert.Equal(t, "New User", res.User.FullName)
		assert.NotEmpty(t, res.Token)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "bad", Password: "123"})
	require.Error(t, err)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Details, "full_name")
	assert.Contains(t, ae.Details, "email")
	assert.Contains(t, ae.Details, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, before, err := f.store.Users().List(ctx, userFilterAll())
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, RegisterInput{FullName: "Dup", Email: "Resident@Example.com", Password: "secret1"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, after, err := f.store.Users().List(ctx, userFilterAll())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, " RESIDENT@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, f.resident.ID, res.User.ID)

	u, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleResident, u.Role)

	_, err = f.auth.Login(ctx, "resident@example.com", "wrong-pass")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	_, err = f.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	_, err = f.auth.Login(ctx, "gone@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, msgInactiveUser, err.Error())

	_, err = f.auth.Login(ctx, "", "")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Authenticate(ctx, "garbage")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	token, _, err := f.auth.JWT.Generate(f.inactive.ID, "resident", f.inactive.Email)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, token)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	token, _, err = f.auth.JWT.Generate(9999, "resident", "ghost@example.com")
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, token)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestListResidents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.auth.ListResidents(ctx, f.guard)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Other Resident", out[0].FullName)
	assert.Equal(t, "Resident Seven", out[1].FullName)

	_, err = f.auth.ListResidents(ctx, f.resident)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}
