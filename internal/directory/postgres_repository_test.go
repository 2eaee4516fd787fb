package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepositoryWithDB(mock)
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "full_name", "phone", "role", "language", "hospital_id",
		"specialization", "slot_minutes", "daily_start", "daily_end",
		"availability", "availability_note", "availability_updated_at", "active", "created_at",
	})
}

func addDoctorRow(rows *pgxmock.Rows, id string) *pgxmock.Rows {
	now := time.Now().UTC()
	spec := "cardiology"
	return rows.AddRow(
		id, "dr."+id, id+"@clinic.test", "Dr "+id, "+911234567890", "doctor", "en", nil,
		&spec, 10, "09:00", "17:00",
		"Available", nil, nil, true, now,
	)
}

func TestPostgresRepositoryGetUser(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("d1").
		WillReturnRows(addDoctorRow(userRows(), "d1"))

	u, err := repo.GetUser(context.Background(), "d1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Role != RoleDoctor || u.Specialization != "cardiology" {
		t.Errorf("user = %+v", u)
	}

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetUser(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresRepositoryListDoctorsFilterSQL(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE role = 'doctor' AND active AND LOWER\(specialization\) = LOWER\(\$1\) AND hospital_id = \$2 ORDER BY id ASC`).
		WithArgs("cardiology", "h1").
		WillReturnRows(addDoctorRow(addDoctorRow(userRows(), "d1"), "d2"))

	got, err := repo.ListDoctors(context.Background(), DoctorFilter{
		Specialization: "cardiology",
		HospitalID:     "h1",
		ActiveOnly:     true,
	})
	if err != nil {
		t.Fatalf("ListDoctors: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d1" {
		t.Errorf("doctors = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositorySetAvailability(t *testing.T) {
	mock, repo := newMockRepo(t)

	rows := userRows()
	now := time.Now().UTC()
	spec := "cardiology"
	note := "rounds"
	rows.AddRow(
		"d1", "dr.d1", "d1@clinic.test", "Dr d1", "+911234567890", "doctor", "en", nil,
		&spec, 10, "09:00", "17:00",
		"On Break", &note, &now, true, now,
	)

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("d1", "On Break", "rounds").
		WillReturnRows(rows)

	u, err := repo.SetAvailability(context.Background(), "d1", OnBreak, "rounds")
	if err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if u.Availability != OnBreak || u.AvailabilityNote != "rounds" {
		t.Errorf("user = %+v", u)
	}
}

func TestPostgresRepositorySetAvailabilityRejectsBadStatus(t *testing.T) {
	_, repo := newMockRepo(t)

	_, err := repo.SetAvailability(context.Background(), "d1", AvailabilityStatus("Gone"), "")
	if !errors.Is(err, ErrInvalidAvailability) {
		t.Fatalf("err = %v, want ErrInvalidAvailability", err)
	}
}

func TestPostgresHospitalSearchSQL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	repo := NewPostgresHospitalRepositoryWithDB(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM hospitals WHERE 1=1 AND government AND LOWER\(state\) = LOWER\(\$1\) AND LOWER\(name\) LIKE LOWER\(\$2\) ORDER BY name ASC LIMIT \$3`).
		WithArgs("Kerala", "General%", 50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "address", "facility_type", "ownership", "state", "district", "government", "created_at",
		}).AddRow("h1", "General Hospital Ernakulam", nil, nil, nil, nil, nil, true, now))

	got, err := repo.Search(context.Background(), HospitalQuery{
		NamePrefix:     "General",
		State:          "Kerala",
		GovernmentOnly: true,
		Limit:          50,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "General Hospital Ernakulam" {
		t.Errorf("hospitals = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
