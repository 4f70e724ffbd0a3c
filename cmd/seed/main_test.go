package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/infrastructure/memory"
)

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	a := account{name: "Gate Guard", email: "guard@vpms.local", role: entity.RoleGuard}

	first, created, err := upsert(ctx, users, a, "secret1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.RoleGuard, first.Role)

	_, err = users.SetActive(ctx, first.ID, false)
	require.NoError(t, err)

	again, created, err := upsert(ctx, users, a, "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Equal(t, first.PasswordHash, again.PasswordHash)
}
