package session

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

const sessionCols = `id, treatment_id, date, time, duration_minutes, cost, performed, paid, pain_before, pain_after, notes, created_at`

func (r *repoPG) Create(ctx context.Context, s *Session) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO sessions (treatment_id, date, time, duration_minutes, cost, performed, paid, pain_before, pain_after, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at`,
		s.TreatmentID, s.Date, s.Time, s.DurationMinutes, s.Cost,
		s.Performed, s.Paid, s.PainBefore, s.PainAfter, s.Notes,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Session) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET
			date=$2, time=$3, duration_minutes=$4, cost=$5,
			performed=$6, paid=$7, pain_before=$8, pain_after=$9, notes=$10
		WHERE id = $1`,
		s.ID, s.Date, s.Time, s.DurationMinutes, s.Cost,
		s.Performed, s.Paid, s.PainBefore, s.PainAfter, s.Notes,
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, q ListQuery) ([]*Session, int, error) {
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
	if q.TreatmentID > 0 {
		add(`treatment_id = $%d`, q.TreatmentID)
	}
	// ISO dates compare lexicographically, so plain string bounds work.
	if q.FromDate != "" {
		add(`date >= $%d`, q.FromDate)
	}
	if q.ToDate != "" {
		add(`date <= $%d`, q.ToDate)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := `SELECT ` + sessionCols + ` FROM sessions ` + where + ` ORDER BY date, time, id`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, q.Limit, q.Offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSessionRow(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *repoPG) ActivityFor(ctx context.Context, treatmentIDs []int64) ([]Activity, error) {
	if len(treatmentIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT treatment_id, date, performed, paid
		FROM sessions WHERE treatment_id = ANY($1)`, treatmentIDs)
	if err != nil {
		return nil, fmt.Errorf("session activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.TreatmentID, &a.Date, &a.Performed, &a.Paid); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) CountOnDate(ctx context.Context, date string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE date = $1`, date).Scan(&n)
	return n, err
}

func (r *repoPG) CountBetween(ctx context.Context, from, to string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE date >= $1 AND date <= $2`, from, to).Scan(&n)
	return n, err
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.TreatmentID, &s.Date, &s.Time, &s.DurationMinutes, &s.Cost,
		&s.Performed, &s.Paid, &s.PainBefore, &s.PainAfter, &s.Notes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSessionRow(rows pgx.Rows) (*Session, error) {
	var s Session
	err := rows.Scan(&s.ID, &s.TreatmentID, &s.Date, &s.Time, &s.DurationMinutes, &s.Cost,
		&s.Performed, &s.Paid, &s.PainBefore, &s.PainAfter, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
