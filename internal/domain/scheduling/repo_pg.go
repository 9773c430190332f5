package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Deeppati2005/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const apptCols = `id, doctor_username, patient_username, date, time, status, notes, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (doctor_username, patient_username, date, time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		a.DoctorUsername, a.PatientUsername, a.Date, a.Time, a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointment create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments SET date = $2, time = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Date, a.Time, a.Status, a.Notes,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("appointment update: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("appointment delete: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments ORDER BY id`)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorUsername string) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments WHERE doctor_username = $1 ORDER BY id`, doctorUsername)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientUsername string) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments WHERE patient_username = $1 ORDER BY id`, patientUsername)
}

func (r *repoPG) ListByDoctorDate(ctx context.Context, doctorUsername, date string) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE doctor_username = $1 AND date = $2 ORDER BY time, id`, doctorUsername, date)
}

func (r *repoPG) LockDoctorDay(ctx context.Context, doctorUsername, date string) error {
	if db.TxFromContext(ctx) == nil {
		return errors.New("lock doctor day: no transaction in context")
	}
	_, err := r.conn(ctx).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, doctorUsername+"|"+date)
	if err != nil {
		return fmt.Errorf("lock doctor day: %w", err)
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointment list: %w", err)
	}
	defer rows.Close()

	appts := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorUsername, &a.PatientUsername, &a.Date, &a.Time,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointment scan: %w", err)
	}
	return &a, nil
}
