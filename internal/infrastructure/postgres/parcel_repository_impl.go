package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/repository"
)

type ParcelRepository struct {
	db DBTX
}

var _ repository.ParcelRepository = (*ParcelRepository)(nil)

func NewParcelRepository(db DBTX) *ParcelRepository {
	return &ParcelRepository{db: db}
}

const parcelColumns = `id, resident_id, parcel_number, sender_name, sender_phone, description, photo_url,
	status, received_at, acknowledged_at, collected_at, created_at, updated_at`

func scanParcel(row pgx.Row) (*entity.Parcel, error) {
	p := &entity.Parcel{}
	var status string
	if err := row.Scan(&p.ID, &p.ResidentID, &p.ParcelNumber, &p.SenderName, &p.SenderPhone, &p.Description,
		&p.PhotoURL, &status, &p.ReceivedAt, &p.AcknowledgedAt, &p.CollectedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Status = entity.ParcelStatus(status)
	return p, nil
}

func (r *ParcelRepository) Create(ctx context.Context, p *entity.Parcel) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO visitors_parcels
			(record_type, resident_id, parcel_number, sender_name, sender_phone, description, status, received_at)
		VALUES ('parcel', $1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		RETURNING id, received_at, created_at, updated_at
	`, p.ResidentID, p.ParcelNumber, p.SenderName, p.SenderPhone, p.Description, string(p.Status), p.ReceivedAt)
	return row.Scan(&p.ID, &p.ReceivedAt, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ParcelRepository) GetByID(ctx context.Context, id int64) (*entity.Parcel, error) {
	return scanParcel(r.db.QueryRow(ctx, `
		SELECT `+parcelColumns+`
		FROM visitors_parcels
		WHERE record_type = 'parcel' AND id = $1
	`, id))
}

func parcelWhere(residentID *int64, statuses []entity.ParcelStatus) *where {
	w := &where{clauses: []string{"record_type = 'parcel'"}}
	if residentID != nil {
		w.add("resident_id = $%d", *residentID)
	}
	if len(statuses) > 0 {
		w.add("status = ANY($%d)", toStrings(statuses))
	}
	return w
}

func (r *ParcelRepository) List(ctx context.Context, f repository.ParcelFilter) ([]entity.Parcel, int, error) {
	w := parcelWhere(f.ResidentID, f.Statuses)

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
		LIMIT $%d OFFSET $%d`, parcelColumns, w.sql(), n, n+1)
	rows, err := r.db.Query(ctx, query, append(w.args, limitArg(f.Limit), f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]entity.Parcel, 0)
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// UpdateStatus keeps an existing stamp for the target status (first write wins).
func (r *ParcelRepository) UpdateStatus(ctx context.Context, id int64, u repository.ParcelStatusUpdate) (*entity.Parcel, error) {
	return scanParcel(r.db.QueryRow(ctx, `
		UPDATE visitors_parcels SET
			status          = $2,
			received_at     = CASE WHEN $2 = 'received'     THEN COALESCE(received_at, $3)     ELSE received_at END,
			acknowledged_at = CASE WHEN $2 = 'acknowledged' THEN COALESCE(acknowledged_at, $3) ELSE acknowledged_at END,
			collected_at    = CASE WHEN $2 = 'collected'    THEN COALESCE(collected_at, $3)    ELSE collected_at END,
			updated_at      = NOW()
		WHERE record_type = 'parcel' AND id = $1
		RETURNING `+parcelColumns,
		id, string(u.Status), u.At))
}

func (r *ParcelRepository) SetPhotoURL(ctx context.Context, id int64, url string) (*entity.Parcel, error) {
	return scanParcel(r.db.QueryRow(ctx, `
		UPDATE visitors_parcels SET photo_url = $2, updated_at = NOW()
		WHERE record_type = 'parcel' AND id = $1
		RETURNING `+parcelColumns, id, url))
}

func (r *ParcelRepository) CountByResident(ctx context.Context, residentID int64, statuses []entity.ParcelStatus) (int, error) {
	w := parcelWhere(&residentID, statuses)
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visitors_parcels WHERE `+w.sql(), w.args...).Scan(&n)
	return n, err
}
