package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carebook/internal/domain"
	"carebook/internal/repository"
)

// reminderOffsets are the fixed durations before an appointment at which a
// reminder fires. Order matters only for the returned slice.
var reminderOffsets = []struct {
	kind   domain.ReminderKind
	before time.Duration
}{
	{domain.ReminderOneHour, time.Hour},
	{domain.ReminderTenMinutes, 10 * time.Minute},
}

// Service schedules, cancels and lists appointment reminder jobs. It only
// writes ScheduledJob rows; firing them is the job processor's concern.
type Service interface {
	CreateAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error)
	CancelAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) error
	UpdateAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error)
	GetAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error)
}

type service struct {
	apptRepo repository.AppointmentRepository
	jobRepo  repository.ScheduledJobRepository
	now      func() time.Time
}

func NewService(apptRepo repository.AppointmentRepository, jobRepo repository.ScheduledJobRepository) Service {
	return &service{
		apptRepo: apptRepo,
		jobRepo:  jobRepo,
		now:      time.Now,
	}
}

// CreateAppointmentReminders creates one pending job per reminder offset that
// is still in the future. Offsets already past are skipped silently, so an
// appointment starting in under ten minutes yields no jobs and no error.
// Each job carries a frozen snapshot of the notification context.
func (s *service) CreateAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created := make([]domain.ScheduledJob, 0, len(reminderOffsets))

	for _, offset := range reminderOffsets {
		fireAt := appt.ScheduledAt.Add(-offset.before)
		if !fireAt.After(now) {
			continue
		}

		payload := domain.ReminderPayload{
			Kind:            offset.kind,
			UserID:          appt.PatientUserID,
			PatientName:     appt.PatientName,
			DoctorName:      appt.DoctorName,
			AppointmentType: appt.Type,
			AppointmentAt:   appt.ScheduledAt,
			ClinicName:      appt.ClinicName,
			ClinicAddress:   appt.ClinicAddress,
		}
		if appt.MeetingLink != nil {
			payload.MeetingLink = *appt.MeetingLink
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reminder payload: %w", err)
		}

		job := domain.ScheduledJob{
			ID:          uuid.New(),
			Type:        domain.JobAppointmentReminder,
			EntityID:    appointmentID,
			ScheduledAt: fireAt,
			Status:      domain.JobPending,
			Data:        data,
		}

		if err := s.jobRepo.Create(ctx, &job); err != nil {
			return nil, fmt.Errorf("failed to create reminder job: %w", err)
		}
		created = append(created, job)
	}

	return created, nil
}

// CancelAppointmentReminders transitions every pending reminder for the
// appointment to cancelled.
func (s *service) CancelAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) error {
	if _, err := s.jobRepo.CancelPendingByEntity(ctx, domain.JobAppointmentReminder, appointmentID); err != nil {
		return fmt.Errorf("failed to cancel reminder jobs: %w", err)
	}
	return nil
}

// UpdateAppointmentReminders is the only sanctioned way reminders change
// after a reschedule: cancel everything pending, then recreate from the
// appointment's current state.
func (s *service) UpdateAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error) {
	if err := s.CancelAppointmentReminders(ctx, appointmentID); err != nil {
		return nil, err
	}
	return s.CreateAppointmentReminders(ctx, appointmentID)
}

func (s *service) GetAppointmentReminders(ctx context.Context, appointmentID uuid.UUID) ([]domain.ScheduledJob, error) {
	return s.jobRepo.ListPendingByEntity(ctx, domain.JobAppointmentReminder, appointmentID)
}
