package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/notify"
	"github.com/karthikvn/clinicq/internal/observability/metrics"
	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/pkg/logging"
)

var bookingTracer = otel.Tracer("clinicq.internal.scheduling")

// Notifier is the dispatcher boundary. Delivery is best-effort; the
// service never inspects an outcome.
type Notifier interface {
	Emit(ctx context.Context, user *directory.User, title, message string, ch notify.Channels)
}

// Service drives the booking pipeline: doctor selection, token
// allocation, position/ETA computation, persistence, and the
// notification cascade.
type Service struct {
	directory directory.Repository
	store     appointments.Store
	selector  *queue.Selector
	allocator *queue.TokenAllocator
	engine    *queue.Engine
	crowd     *queue.CrowdService
	notifier  Notifier
	metrics   *metrics.QueueMetrics
	logger    *logging.Logger
	now       func() time.Time

	// Fallback consultation window for doctors whose records carry an
	// unparseable daily start/end.
	dayStart string
	dayEnd   string
}

// NewService wires the scheduling core. crowd and metrics may be nil.
func NewService(
	dir directory.Repository,
	store appointments.Store,
	selector *queue.Selector,
	allocator *queue.TokenAllocator,
	engine *queue.Engine,
	crowd *queue.CrowdService,
	notifier Notifier,
	m *metrics.QueueMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		directory: dir,
		store:     store,
		selector:  selector,
		allocator: allocator,
		engine:    engine,
		crowd:     crowd,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		dayStart:  "09:00",
		dayEnd:    "17:00",
	}
}

// WithClock overrides the wall clock. Tests use this to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithDayWindow overrides the fallback consultation window. Empty
// values keep the current bound.
func (s *Service) WithDayWindow(start, end string) *Service {
	if start != "" {
		s.dayStart = start
	}
	if end != "" {
		s.dayEnd = end
	}
	return s
}

// BookRequest is a patient's booking submission.
type BookRequest struct {
	PatientID      string `json:"patient_id"`
	Specialization string `json:"specialization,omitempty"`
	Priority       string `json:"priority,omitempty"`
	Symptoms       string `json:"symptoms,omitempty"`
}

// BookResult carries everything the patient is told after booking.
type BookResult struct {
	Appointment *appointments.Appointment `json:"appointment"`
	Doctor      *directory.User           `json:"doctor"`
	Position    int                       `json:"position"`
	WaitMinutes int                       `json:"wait_minutes"`
}

// Book runs the full booking pipeline. Allocation and persistence
// errors abort the whole operation with no partial appointment;
// notification failures are invisible to the caller.
func (s *Service) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	ctx, span := bookingTracer.Start(ctx, "scheduling.book")
	defer span.End()
	started := s.now()

	patient, err := s.directory.GetUser(ctx, req.PatientID)
	if err != nil {
		s.metrics.ObserveBooking(req.Priority, "rejected")
		return nil, fmt.Errorf("scheduling: load patient: %w", err)
	}

	priority, err := appointments.ParsePriority(req.Priority)
	if err != nil {
		s.metrics.ObserveBooking(req.Priority, "rejected")
		return nil, err
	}

	doctor, err := s.selector.ChooseDoctor(ctx, req.Specialization, patient.HospitalID)
	if err != nil {
		s.metrics.ObserveBooking(string(priority), "rejected")
		return nil, err
	}
	span.SetAttributes(attribute.String("doctor.id", doctor.ID))

	now := s.now()
	date := appointments.DateOf(now)

	// Position is taken before commit, so it can be stale by one slot
	// against a racing booking; recomputation on the next read heals it.
	length, err := s.engine.Length(ctx, doctor.ID, date)
	if err != nil {
		s.metrics.ObserveBooking(string(priority), "error")
		return nil, err
	}
	position := length + 1
	scheduled := queue.ComputeScheduledTimeWindow(doctor, position, now, s.dayStart, s.dayEnd)

	appt := &appointments.Appointment{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		ScheduledTime: scheduled,
		Status:        appointments.StatusWaiting,
		Priority:      priority,
		PriorityScore: priority.Score(),
		Symptoms:      req.Symptoms,
		TokenDate:     date,
	}

	token, err := s.allocator.Allocate(ctx, doctor.ID, date, func(token int) error {
		appt.TokenNumber = token
		return s.store.Insert(ctx, appt)
	})
	if err != nil {
		s.metrics.ObserveBooking(string(priority), "error")
		return nil, err
	}
	span.SetAttributes(attribute.Int("queue.token", token))

	waitMinutes := queue.EstimateWaitMinutes(doctor, position)
	s.metrics.ObserveBooking(string(priority), "booked")
	s.metrics.ObserveTokenIssued()
	s.metrics.ObserveEstimatedWait(float64(waitMinutes))
	s.metrics.ObserveBookingLatency(s.now().Sub(started).Seconds())
	if s.crowd != nil {
		s.crowd.Invalidate(ctx, date)
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", doctor.ID,
		"token", token,
		"priority", string(priority),
		"position", position,
	)

	s.notifier.Emit(ctx, patient, "Appointment Confirmed",
		fmt.Sprintf("Token #%d assigned with Dr. %s. Estimated wait: %d minutes.",
			token, doctor.DisplayName(), waitMinutes),
		notify.Channels{Email: true, SMS: true})
	s.notifier.Emit(ctx, doctor, "New Patient Assigned",
		fmt.Sprintf("New patient %s assigned. Token #%d (%s).",
			patient.DisplayName(), token, string(priority)),
		notify.Channels{Email: true, SMS: true})

	if priority == appointments.PriorityEmergency {
		s.alertAdmins(ctx, doctor, token)
	}

	return &BookResult{
		Appointment: appt,
		Doctor:      doctor,
		Position:    position,
		WaitMinutes: waitMinutes,
	}, nil
}

func (s *Service) alertAdmins(ctx context.Context, doctor *directory.User, token int) {
	admins, err := s.directory.ListAdmins(ctx)
	if err != nil {
		s.logger.Error("scheduling: list admins for emergency alert", "error", err)
		return
	}
	for _, admin := range admins {
		s.notifier.Emit(ctx, admin, "Emergency Case Alert",
			fmt.Sprintf("Emergency case booked for Dr. %s. Token #%d.", doctor.DisplayName(), token),
			notify.Channels{Email: true, SMS: true})
	}
}

// UpdateStatus moves an appointment through the state machine. A
// terminal transition re-derives the queue head and tells that patient
// they are next.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID, rawStatus string) (*appointments.Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "scheduling.update_status")
	defer span.End()

	status, err := appointments.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	appt, err := s.store.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", appointments.ErrInvalidStatus, appt.Status, status)
	}

	if err := s.store.UpdateStatus(ctx, appt.ID, status); err != nil {
		return nil, err
	}
	appt.Status = status
	s.metrics.ObserveTransition(string(status))
	if s.crowd != nil {
		s.crowd.Invalidate(ctx, appt.TokenDate)
	}
	span.SetAttributes(attribute.String("status.to", string(status)))

	doctor, err := s.directory.GetDoctor(ctx, appt.DoctorID)
	if err != nil {
		// The transition is committed; notifications degrade without
		// doctor details rather than failing the call.
		s.logger.Error("scheduling: load doctor after transition", "error", err, "doctor_id", appt.DoctorID)
		return appt, nil
	}

	if patient, err := s.directory.GetUser(ctx, appt.PatientID); err == nil {
		s.notifier.Emit(ctx, patient, "Appointment Update",
			fmt.Sprintf("Your appointment status is now %s.", string(status)),
			notify.Channels{Email: true, SMS: true})
	}

	if status.IsTerminal() {
		s.notifyNext(ctx, doctor, appt.TokenDate)
	}
	return appt, nil
}

// notifyNext tells the new queue head to come to the consultation desk.
func (s *Service) notifyNext(ctx context.Context, doctor *directory.User, date time.Time) {
	next, err := s.engine.Next(ctx, doctor.ID, date)
	if err != nil {
		s.logger.Error("scheduling: recompute queue head", "error", err, "doctor_id", doctor.ID)
		return
	}
	if next == nil {
		return
	}
	patient, err := s.directory.GetUser(ctx, next.PatientID)
	if err != nil {
		s.logger.Error("scheduling: load next patient", "error", err, "patient_id", next.PatientID)
		return
	}
	s.notifier.Emit(ctx, patient, "You're Next",
		fmt.Sprintf("You are next in queue for Dr. %s. Please proceed to the consultation desk.",
			doctor.DisplayName()),
		notify.Channels{Email: true, SMS: true})
}

// SetAvailability updates a doctor's availability. Admin overrides also
// notify the doctor.
func (s *Service) SetAvailability(ctx context.Context, doctorID, rawStatus, note string, byAdmin bool) (*directory.User, error) {
	status, err := directory.ParseAvailability(rawStatus)
	if err != nil {
		return nil, err
	}
	doctor, err := s.directory.SetAvailability(ctx, doctorID, status, note)
	if err != nil {
		return nil, err
	}
	if byAdmin {
		s.notifier.Emit(ctx, doctor, "Availability Updated by Admin",
			fmt.Sprintf("Your availability is now set to %s.", string(status)),
			notify.Channels{Email: true, SMS: true})
	}
	return doctor, nil
}

// PatientStatus is the live view a patient polls while waiting.
type PatientStatus struct {
	Appointment *appointments.Appointment `json:"appointment"`
	Doctor      *directory.User           `json:"doctor,omitempty"`
	Position    int                       `json:"position,omitempty"`
	WaitMinutes int                       `json:"wait_minutes,omitempty"`
}

// PatientStatus reports the patient's latest appointment with its live
// queue position and ETA. A terminal appointment reports no position.
func (s *Service) PatientStatus(ctx context.Context, patientID string) (*PatientStatus, error) {
	appt, err := s.store.LatestForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	status := &PatientStatus{Appointment: appt}
	doctor, err := s.directory.GetDoctor(ctx, appt.DoctorID)
	if err != nil {
		return status, nil
	}
	status.Doctor = doctor

	position, err := s.engine.Position(ctx, appt)
	if err != nil {
		return nil, err
	}
	status.Position = position
	status.WaitMinutes = queue.EstimateWaitMinutes(doctor, position)
	return status, nil
}

// DoctorQueue returns the ordered active queue for a doctor today.
func (s *Service) DoctorQueue(ctx context.Context, doctorID string) ([]*appointments.Appointment, error) {
	if _, err := s.directory.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.engine.ActiveQueue(ctx, doctorID, s.now())
}
