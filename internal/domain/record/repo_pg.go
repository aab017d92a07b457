package record

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{db: pool}
}

const recordCols = `id, patient_name, dob, gender, payload, created_at`

func (r *repoPG) scan(row pgx.Row) (*StoredRecord, error) {
	var rec StoredRecord
	err := row.Scan(&rec.ID, &rec.PatientName, &rec.DOB, &rec.Gender, &rec.Payload, &rec.CreatedAt)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *StoredRecord) error {
	rec.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO patient_record (id, patient_name, dob, gender, payload)
		VALUES ($1,$2,$3,$4,$5)`,
		rec.ID, rec.PatientName, rec.DOB, rec.Gender, rec.Payload)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+recordCols+` FROM patient_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *StoredRecord) error {
	_, err := r.db.Exec(ctx, `
		UPDATE patient_record SET patient_name=$2, dob=$3, gender=$4, payload=$5
		WHERE id = $1`,
		rec.ID, rec.PatientName, rec.DOB, rec.Gender, rec.Payload)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM patient_record WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*StoredRecord, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patient_record`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+recordCols+` FROM patient_record ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, r.scan, total)
}

func (r *repoPG) SearchByName(ctx context.Context, name string, limit, offset int) ([]*StoredRecord, int, error) {
	pattern := "%" + name + "%"
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patient_record WHERE patient_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+recordCols+` FROM patient_record WHERE patient_name ILIKE $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, r.scan, total)
}

func collect(rows pgx.Rows, scan func(pgx.Row) (*StoredRecord, error), total int) ([]*StoredRecord, int, error) {
	var items []*StoredRecord
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
