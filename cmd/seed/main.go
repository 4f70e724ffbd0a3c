package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oksasatya/vpms/config"
	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
	pginfra "github.com/oksasatya/vpms/internal/infrastructure/postgres"
	"github.com/oksasatya/vpms/pkg/helpers"
)

type account struct {
	name  string
	email string
	role  entity.Role
}

func main() {
	var password string
	accounts := []account{
		{name: "Site Admin", email: "admin@vpms.local", role: entity.RoleAdmin},
		{name: "Gate Guard", email: "guard@vpms.local", role: entity.RoleGuard},
		{name: "Demo Resident", email: "resident@vpms.local", role: entity.RoleResident},
	}

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Create or reactivate the demo admin, guard and resident accounts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg := config.Load()

			pool, err := pginfra.NewPool(cmd.Context(), cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			users := pginfra.NewUserRepository(pool)
			for _, a := range accounts {
				u, created, err := upsert(cmd.Context(), users, a, password)
				if err != nil {
					return fmt.Errorf("seed %s: %w", a.email, err)
				}
				state := "exists"
				if created {
					state = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s id=%d role=%s email=%s\n", state, u.ID, u.Role, u.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "password123", "password for newly created accounts")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// upsert creates the account or reactivates an existing one. The password of
// an existing account is left alone.
func upsert(ctx context.Context, users repository.UserRepository, a account, password string) (*entity.User, bool, error) {
	u, err := users.GetByEmail(ctx, a.email)
	switch {
	case err == nil:
		if !u.IsActive {
			u, err = users.SetActive(ctx, u.ID, true)
		}
		return u, false, err
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{FullName: a.name, Email: a.email, PasswordHash: hash, Role: a.role, IsActive: true}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}
