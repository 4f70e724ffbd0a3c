package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, full_name, email, phone, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.FullName, strings.ToLower(u.Email), u.Phone, u.PasswordHash, string(u.Role), u.IsActive)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserRepository) collect(rows pgx.Rows) ([]entity.User, error) {
	defer rows.Close()
	out := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1 AND is_active = TRUE
		ORDER BY full_name ASC, id ASC
	`, string(role))
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *UserRepository) List(ctx context.Context, f repository.UserFilter) ([]entity.User, int, error) {
	var role *string
	if f.Role != nil {
		s := string(*f.Role)
		role = &s
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE ($1::text IS NULL OR role = $1)`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`, role, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, 0, err
	}
	users, err := r.collect(rows)
	return users, total, err
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, active))
}

// limitArg maps "no limit" to NULL, which Postgres treats as LIMIT ALL.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
