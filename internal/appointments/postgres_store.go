package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// apptDB is the slice of pgxpool the store needs, kept small so tests
// can inject pgxmock.
type apptDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists appointments in Postgres. The schema carries a
// unique index on (doctor_id, token_date, token_number) as a backstop
// for the allocator's serialization.
type PostgresStore struct {
	db apptDB
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting a mock database for testing.
func NewPostgresStoreWithDB(db apptDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const apptColumns = `id, patient_id, doctor_id, scheduled_time, status, priority, priority_score,
	symptoms, token_number, token_date, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var symptoms *string
	if err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledTime, &a.Status, &a.Priority, &a.PriorityScore,
		&symptoms, &a.TokenNumber, &a.TokenDate, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if symptoms != nil {
		a.Symptoms = *symptoms
	}
	a.TokenDate = DateOf(a.TokenDate)
	return &a, nil
}

func (s *PostgresStore) MaxToken(ctx context.Context, doctorID string, date time.Time) (int, error) {
	var max int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(token_number), 0) FROM appointments WHERE doctor_id = $1 AND token_date = $2`,
		doctorID, DateOf(date),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("appointments: read max token: %w", errors.Join(ErrStorageUnavailable, err))
	}
	return max, nil
}

func (s *PostgresStore) Insert(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, scheduled_time, status, priority,
			priority_score, symptoms, token_number, token_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := s.db.QueryRow(ctx, query,
		appt.ID, appt.PatientID, appt.DoctorID, appt.ScheduledTime, string(appt.Status),
		string(appt.Priority), appt.PriorityScore, appt.Symptoms, appt.TokenNumber, DateOf(appt.TokenDate),
	).Scan(&appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", errors.Join(ErrStorageUnavailable, err))
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := s.db.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", errors.Join(ErrStorageUnavailable, err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) QueryActive(ctx context.Context, doctorID string, date time.Time) ([]*Appointment, error) {
	return s.queryMany(ctx,
		`SELECT `+apptColumns+` FROM appointments
		WHERE doctor_id = $1 AND token_date = $2 AND status IN ('Waiting', 'In Progress')`,
		doctorID, DateOf(date))
}

func (s *PostgresStore) QueryActiveAll(ctx context.Context, date time.Time) ([]*Appointment, error) {
	return s.queryMany(ctx,
		`SELECT `+apptColumns+` FROM appointments
		WHERE token_date = $1 AND status IN ('Waiting', 'In Progress')`,
		DateOf(date))
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: query active: %w", errors.Join(ErrStorageUnavailable, err))
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: query active: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LatestForPatient(ctx context.Context, patientID string) (*Appointment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`,
		patientID)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: latest for patient: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) CountsForDate(ctx context.Context, date time.Time) (DayCounts, error) {
	var c DayCounts
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE priority = 'Emergency'),
			COUNT(*) FILTER (WHERE status IN ('Waiting', 'In Progress'))
		FROM appointments WHERE token_date = $1`,
		DateOf(date),
	).Scan(&c.Total, &c.Emergency, &c.Active)
	if err != nil {
		return DayCounts{}, fmt.Errorf("appointments: day counts: %w", err)
	}
	return c, nil
}

var _ Store = (*PostgresStore)(nil)
