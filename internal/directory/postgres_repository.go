package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// directoryDB is the slice of pgxpool the repository needs, kept small
// so tests can inject pgxmock.
type directoryDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores directory records in Postgres.
type PostgresRepository struct {
	db directoryDB
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db directoryDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, full_name, phone, role, language, hospital_id,
	specialization, slot_minutes, daily_start, daily_end,
	availability, availability_note, availability_updated_at, active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var hospitalID, specialization, note *string
	var updatedAt *time.Time
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.Language, &hospitalID,
		&specialization, &u.SlotMinutes, &u.DailyStart, &u.DailyEnd,
		&u.Availability, &note, &updatedAt, &u.Active, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if hospitalID != nil {
		u.HospitalID = *hospitalID
	}
	if specialization != nil {
		u.Specialization = *specialization
	}
	if note != nil {
		u.AvailabilityNote = *note
	}
	if updatedAt != nil {
		u.AvailabilityUpdatedAt = *updatedAt
	}
	return &u, nil
}

func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: load user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetDoctor(ctx context.Context, id string) (*User, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != RoleDoctor {
		return nil, ErrNotADoctor
	}
	return u, nil
}

func (r *PostgresRepository) ListDoctors(ctx context.Context, filter DoctorFilter) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'doctor'`
	var args []any
	idx := 1
	if filter.ActiveOnly {
		query += ` AND active`
	}
	if filter.Specialization != "" {
		query += fmt.Sprintf(` AND LOWER(specialization) = LOWER($%d)`, idx)
		args = append(args, filter.Specialization)
		idx++
	}
	if filter.HospitalID != "" {
		query += fmt.Sprintf(` AND hospital_id = $%d`, idx)
		args = append(args, filter.HospitalID)
		idx++
	}
	// ID order keeps selector tie-breaking deterministic.
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: list doctors: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan doctor: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list doctors: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListAdmins(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'admin' ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("directory: list admins: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan admin: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list admins: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n); err != nil {
		return 0, fmt.Errorf("directory: count role: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) SetAvailability(ctx context.Context, doctorID string, status AvailabilityStatus, note string) (*User, error) {
	if _, err := ParseAvailability(string(status)); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET availability = $2, availability_note = $3, availability_updated_at = NOW()
		WHERE id = $1 AND role = 'doctor'
		RETURNING `+userColumns,
		doctorID, string(status), note,
	)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: set availability: %w", err)
	}
	return u, nil
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresHospitalRepository serves hospital lookups from Postgres.
type PostgresHospitalRepository struct {
	db directoryDB
}

// NewPostgresHospitalRepository initializes a hospital repo backed by pgxpool.
func NewPostgresHospitalRepository(pool *pgxpool.Pool) *PostgresHospitalRepository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresHospitalRepository{db: pool}
}

// NewPostgresHospitalRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresHospitalRepositoryWithDB(db directoryDB) *PostgresHospitalRepository {
	return &PostgresHospitalRepository{db: db}
}

const maxHospitalResults = 200

func (r *PostgresHospitalRepository) Search(ctx context.Context, q HospitalQuery) ([]*Hospital, error) {
	query := `SELECT id, name, address, facility_type, ownership, state, district, government, created_at
		FROM hospitals WHERE 1=1`
	var args []any
	idx := 1
	if q.GovernmentOnly {
		query += ` AND government`
	}
	if q.State != "" {
		query += fmt.Sprintf(` AND LOWER(state) = LOWER($%d)`, idx)
		args = append(args, q.State)
		idx++
	}
	if q.District != "" {
		query += fmt.Sprintf(` AND LOWER(district) = LOWER($%d)`, idx)
		args = append(args, q.District)
		idx++
	}
	if q.NamePrefix != "" {
		query += fmt.Sprintf(` AND LOWER(name) LIKE LOWER($%d)`, idx)
		args = append(args, q.NamePrefix+"%")
		idx++
	}
	limit := q.Limit
	if limit <= 0 || limit > maxHospitalResults {
		limit = maxHospitalResults
	}
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d`, idx)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: search hospitals: %w", err)
	}
	defer rows.Close()

	var out []*Hospital
	for rows.Next() {
		var h Hospital
		var address, facilityType, ownership, state, district *string
		if err := rows.Scan(&h.ID, &h.Name, &address, &facilityType, &ownership, &state, &district, &h.Government, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("directory: scan hospital: %w", err)
		}
		h.Address = deref(address)
		h.FacilityType = deref(facilityType)
		h.Ownership = deref(ownership)
		h.State = deref(state)
		h.District = deref(district)
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: search hospitals: %w", err)
	}
	return out, nil
}

func (r *PostgresHospitalRepository) States(ctx context.Context, governmentOnly bool) ([]string, error) {
	query := `SELECT DISTINCT state FROM hospitals WHERE state IS NOT NULL AND TRIM(state) <> ''`
	if governmentOnly {
		query += ` AND government`
	}
	query += ` ORDER BY state ASC`
	return r.stringColumn(ctx, query)
}

func (r *PostgresHospitalRepository) Districts(ctx context.Context, state string, governmentOnly bool) ([]string, error) {
	query := `SELECT DISTINCT district FROM hospitals WHERE district IS NOT NULL AND TRIM(district) <> ''`
	var args []any
	if governmentOnly {
		query += ` AND government`
	}
	if state != "" {
		query += ` AND LOWER(state) = LOWER($1)`
		args = append(args, state)
	}
	query += ` ORDER BY district ASC`
	return r.stringColumn(ctx, query, args...)
}

func (r *PostgresHospitalRepository) stringColumn(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: hospital column query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("directory: scan hospital column: %w", err)
		}
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: hospital column query: %w", err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ HospitalRepository = (*PostgresHospitalRepository)(nil)
