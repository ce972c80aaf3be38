package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"carebook/internal/domain"
	"carebook/internal/repository"
	"carebook/internal/service/notification"
)

// Service executes due scheduled jobs and purges stale terminal ones. It is
// invoked synchronously by the poller or the trigger endpoints; it owns no
// goroutines of its own.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error)
	ProcessDueReminders(ctx context.Context, now time.Time) (int, error)
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	jobRepo  repository.ScheduledJobRepository
	apptRepo repository.AppointmentRepository
	notifSvc notification.Service
}

func NewService(jobRepo repository.ScheduledJobRepository, apptRepo repository.AppointmentRepository, notifSvc notification.Service) Service {
	return &service{
		jobRepo:  jobRepo,
		apptRepo: apptRepo,
		notifSvc: notifSvc,
	}
}

// Get returns one job by ID for inspection through the admin surface.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ProcessDueReminders executes every pending reminder job whose time has
// arrived and returns the number marked completed. A job that errors is
// marked failed and the batch continues; one bad job never blocks the rest
// of the poll cycle. Failed jobs are terminal and are not retried.
func (s *service) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.jobRepo.ListDue(ctx, domain.JobAppointmentReminder, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminder jobs: %w", err)
	}

	completed := 0
	for i := range due {
		job := &due[i]

		if err := s.executeReminder(ctx, job); err != nil {
			log.Printf("reminder job %s: execution failed: %v", job.ID, err)
			if err := s.jobRepo.UpdateStatus(ctx, job.ID, domain.JobFailed); err != nil {
				log.Printf("reminder job %s: failed to mark failed: %v", job.ID, err)
			}
			continue
		}

		if err := s.jobRepo.UpdateStatus(ctx, job.ID, domain.JobCompleted); err != nil {
			log.Printf("reminder job %s: failed to mark completed: %v", job.ID, err)
			continue
		}
		completed++
	}

	return completed, nil
}

// executeReminder fires the reminder notification for one job. An appointment
// that disappeared or was cancelled after the job was scheduled suppresses
// the send; the job still completes normally.
func (s *service) executeReminder(ctx context.Context, job *domain.ScheduledJob) error {
	payload, err := job.ReminderPayload()
	if err != nil {
		return fmt.Errorf("invalid reminder payload: %w", err)
	}

	appt, err := s.apptRepo.GetByID(ctx, job.EntityID)
	if errors.Is(err, domain.ErrAppointmentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	if appt.Status == domain.AppointmentStatusCancelled {
		return nil
	}

	title, message := reminderContent(payload)

	data := map[string]string{
		"appointment_id": job.EntityID.String(),
		"patient_name":   payload.PatientName,
		"doctor_name":    payload.DoctorName,
		"appointment_at": payload.AppointmentAt.Format(time.RFC3339),
		"clinic_name":    payload.ClinicName,
		"clinic_address": payload.ClinicAddress,
	}
	if payload.MeetingLink != "" {
		data["meeting_link"] = payload.MeetingLink
	}

	_, err = s.notifSvc.Create(ctx, domain.CreateNotificationInput{
		UserID:   payload.UserID,
		Type:     domain.NotifAppointmentReminder,
		Title:    title,
		Message:  message,
		Data:     data,
		Channels: []domain.NotificationChannel{domain.ChannelEmail, domain.ChannelInApp, domain.ChannelPush},
	})
	if err != nil {
		return fmt.Errorf("failed to create reminder notification: %w", err)
	}
	return nil
}

func reminderContent(p *domain.ReminderPayload) (string, string) {
	var window string
	switch p.Kind {
	case domain.ReminderOneHour:
		window = "1 hour"
	case domain.ReminderTenMinutes:
		window = "10 minutes"
	default:
		window = "soon"
	}

	title := fmt.Sprintf("Appointment Reminder - %s", window)
	message := fmt.Sprintf("Your appointment with %s starts in %s.", p.DoctorName, window)
	return title, message
}

// CleanupOldJobs deletes completed, failed and cancelled jobs last updated
// more than retentionDays ago. Pending jobs are never touched.
func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.jobRepo.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old jobs: %w", err)
	}
	return deleted, nil
}
