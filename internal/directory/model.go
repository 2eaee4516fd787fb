package directory

import (
	"strings"
	"time"
)

// Role classifies a user record.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// AvailabilityStatus is the closed set of doctor availability states.
type AvailabilityStatus string

const (
	Available AvailabilityStatus = "Available"
	OnBreak   AvailabilityStatus = "On Break"
	OffDuty   AvailabilityStatus = "Off Duty"
)

// ParseAvailability validates a raw availability string against the
// closed set. Matching is exact; callers normalize whitespace only.
func ParseAvailability(raw string) (AvailabilityStatus, error) {
	switch AvailabilityStatus(strings.TrimSpace(raw)) {
	case Available:
		return Available, nil
	case OnBreak:
		return OnBreak, nil
	case OffDuty:
		return OffDuty, nil
	default:
		return "", ErrInvalidAvailability
	}
}

// User is a directory record. Patients, doctors and admins share the
// same shape; the doctor-only fields are zero for other roles.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Role       Role   `json:"role"`
	Language   string `json:"language,omitempty"`
	HospitalID string `json:"hospital_id,omitempty"`

	// Doctor scheduling fields.
	Specialization string `json:"specialization,omitempty"`
	SlotMinutes    int    `json:"slot_minutes,omitempty"`
	DailyStart     string `json:"daily_start,omitempty"` // "09:00" 24-hour clock
	DailyEnd       string `json:"daily_end,omitempty"`   // "17:00"

	Availability          AvailabilityStatus `json:"availability,omitempty"`
	AvailabilityNote      string             `json:"availability_note,omitempty"`
	AvailabilityUpdatedAt time.Time          `json:"availability_updated_at,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the full name over the login name.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// DoctorFilter narrows ListDoctors results. Empty fields match everything.
type DoctorFilter struct {
	Specialization string
	HospitalID     string
	ActiveOnly     bool
}

// Hospital is a facility record from the health-centre directory import.
type Hospital struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	FacilityType string    `json:"facility_type,omitempty"`
	Ownership    string    `json:"ownership,omitempty"`
	State        string    `json:"state,omitempty"`
	District     string    `json:"district,omitempty"`
	Government   bool      `json:"government"`
	CreatedAt    time.Time `json:"created_at"`
}

// HospitalQuery filters hospital searches. Limit is clamped by the
// repository; zero means the repository default.
type HospitalQuery struct {
	NamePrefix     string
	State          string
	District       string
	GovernmentOnly bool
	Limit          int
}
