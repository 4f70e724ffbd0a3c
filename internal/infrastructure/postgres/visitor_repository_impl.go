package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type VisitorRepository struct {
	db DBTX
}

var _ repository.VisitorRepository = (*VisitorRepository)(nil)

func NewVisitorRepository(db DBTX) *VisitorRepository {
	return &VisitorRepository{db: db}
}

const visitorColumns = `id, resident_id, visitor_name, visitor_phone, purpose, status,
	expected_at, arrived_at, checked_in_at, checked_out_at, created_at, updated_at`

func scanVisitor(row pgx.Row) (*entity.Visitor, error) {
	v := &entity.Visitor{}
	var status string
	if err := row.Scan(&v.ID, &v.ResidentID, &v.Name, &v.Phone, &v.Purpose, &status,
		&v.ExpectedAt, &v.ArrivedAt, &v.CheckedInAt, &v.CheckedOutAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	v.Status = entity.VisitorStatus(status)
	return v, nil
}

func (r *VisitorRepository) Create(ctx context.Context, v *entity.Visitor) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO visitors_parcels
			(record_type, resident_id, visitor_name, visitor_phone, purpose, status, expected_at, checked_out_at)
		VALUES ('visitor', $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, v.ResidentID, v.Name, v.Phone, v.Purpose, string(v.Status), v.ExpectedAt, v.CheckedOutAt)
	return row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VisitorRepository) GetByID(ctx context.Context, id int64) (*entity.Visitor, error) {
	return scanVisitor(r.db.QueryRow(ctx, `
		SELECT `+visitorColumns+`
		FROM visitors_parcels
		WHERE record_type = 'visitor' AND id = $1
	`, id))
}

func visitorWhere(residentID *int64, statuses []entity.VisitorStatus) *where {
	w := &where{clauses: []string{"record_type = 'visitor'"}}
	if residentID != nil {
		w.add("resident_id = $%d", *residentID)
	}
	if len(statuses) > 0 {
		w.add("status = ANY($%d)", toStrings(statuses))
	}
	return w
}

func (r *VisitorRepository) List(ctx context.Context, f repository.VisitorFilter) ([]entity.Visitor, int, error) {
	w := visitorWhere(f.ResidentID, f.Statuses)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visitors_parcels WHERE `+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := w.next()
	query := fmt.Sprintf(`
		SELECT %s
		FROM visitors_parcels
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, visitorColumns, w.sql(), n, n+1)
	rows, err := r.db.Query(ctx, query, append(w.args, limitArg(f.Limit), f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]entity.Visitor, 0)
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

// UpdateStatus overwrites a timestamp only when a new value is supplied.
func (r *VisitorRepository) UpdateStatus(ctx context.Context, id int64, u repository.VisitorStatusUpdate) (*entity.Visitor, error) {
	return scanVisitor(r.db.QueryRow(ctx, `
		UPDATE visitors_parcels SET
			status         = $2,
			arrived_at     = COALESCE($3, arrived_at),
			checked_in_at  = COALESCE($4, checked_in_at),
			checked_out_at = COALESCE($5, checked_out_at),
			updated_at     = NOW()
		WHERE record_type = 'visitor' AND id = $1
		RETURNING `+visitorColumns,
		id, string(u.Status), u.ArrivedAt, u.CheckedInAt, u.CheckedOutAt))
}

func (r *VisitorRepository) CountByResident(ctx context.Context, residentID int64, statuses []entity.VisitorStatus) (int, error) {
	w := visitorWhere(&residentID, statuses)
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visitors_parcels WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}
