package treatment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const treatmentCols = `id, patient_id, diagnosis, care_type, start_date, planned_sessions, tariff_per_session, notes, status, created_at`

func (r *repoPG) Create(ctx context.Context, t *Treatment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO treatments (patient_id, diagnosis, care_type, start_date, planned_sessions, tariff_per_session, notes, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		t.PatientID, t.Diagnosis, t.CareType, t.StartDate, t.PlannedSessions, t.TariffPerSession, t.Notes, t.Status, t.CreatedAt,
	).Scan(&t.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Treatment, error) {
	return scanTreatment(r.pool.QueryRow(ctx, `SELECT `+treatmentCols+` FROM treatments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Treatment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE treatments SET
			diagnosis=$2, care_type=$3, start_date=$4,
			planned_sessions=$5, tariff_per_session=$6, notes=$7, status=$8
		WHERE id = $1`,
		t.ID, t.Diagnosis, t.CareType, t.StartDate, t.PlannedSessions, t.TariffPerSession, t.Notes, t.Status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	// Sessions follow via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM treatments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, q ListQuery) ([]*Treatment, int, error) {
	where := ``
	args := []interface{}{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		if where == "" {
			where = `WHERE `
		} else {
			where += ` AND `
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if q.PatientID > 0 {
		add(`patient_id = $%d`, q.PatientID)
	}
	if q.Status != "" {
		add(`status = $%d`, q.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM treatments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count treatments: %w", err)
	}

	query := `SELECT ` + treatmentCols + ` FROM treatments ` + where + ` ORDER BY start_date DESC, id DESC`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, q.Limit, q.Offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list treatments: %w", err)
	}
	defer rows.Close()

	var treatments []*Treatment
	for rows.Next() {
		t, err := scanTreatmentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		treatments = append(treatments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return treatments, total, nil
}

func (r *repoPG) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM treatments WHERE status = $1`, status).Scan(&n)
	return n, err
}

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.PatientID, &t.Diagnosis, &t.CareType, &t.StartDate,
		&t.PlannedSessions, &t.TariffPerSession, &t.Notes, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTreatmentRow(rows pgx.Rows) (*Treatment, error) {
	var t Treatment
	err := rows.Scan(&t.ID, &t.PatientID, &t.Diagnosis, &t.CareType, &t.StartDate,
		&t.PlannedSessions, &t.TariffPerSession, &t.Notes, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
