package reminder_test

import (
	"context"
	"testing"
	"time"

	"carebook/internal/domain"
	"carebook/internal/service/reminder"
	"carebook/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testAppointment(id uuid.UUID, startsIn time.Duration) *domain.Appointment {
	link := "https://meet.example.com/abc"
	return &domain.Appointment{
		ID:            id,
		ScheduledAt:   time.Now().Add(startsIn),
		Status:        domain.AppointmentStatusScheduled,
		Type:          "video",
		MeetingLink:   &link,
		PatientUserID: uuid.New(),
		PatientName:   "Alice Tan",
		DoctorName:    "Dr. Budi",
		ClinicName:    "CareBook Clinic",
		ClinicAddress: "Jl. Sudirman 12",
	}
}

func TestReminderService_Create_BothOffsets(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()
	appt := testAppointment(apptID, 3*time.Hour)

	apptRepo.On("GetByID", ctx, apptID).Return(appt, nil).Once()
	jobRepo.On("Create", ctx, mock.MatchedBy(func(j *domain.ScheduledJob) bool {
		return j.Type == domain.JobAppointmentReminder &&
			j.EntityID == apptID &&
			j.Status == domain.JobPending
	})).Return(nil).Twice()

	jobs, err := svc.CreateAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, appt.ScheduledAt.Add(-time.Hour), jobs[0].ScheduledAt)
	assert.Equal(t, appt.ScheduledAt.Add(-10*time.Minute), jobs[1].ScheduledAt)
	jobRepo.AssertExpectations(t)

	payload, err := jobs[0].ReminderPayload()
	assert.NoError(t, err)
	assert.Equal(t, domain.ReminderOneHour, payload.Kind)
	assert.Equal(t, appt.PatientUserID, payload.UserID)
	assert.Equal(t, "Dr. Budi", payload.DoctorName)
	assert.Equal(t, "https://meet.example.com/abc", payload.MeetingLink)
}

func TestReminderService_Create_OnlyTenMinuteOffset(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()
	appt := testAppointment(apptID, 30*time.Minute)

	apptRepo.On("GetByID", ctx, apptID).Return(appt, nil).Once()
	jobRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

	jobs, err := svc.CreateAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	assert.Len(t, jobs, 1)

	payload, err := jobs[0].ReminderPayload()
	assert.NoError(t, err)
	assert.Equal(t, domain.ReminderTenMinutes, payload.Kind)
}

func TestReminderService_Create_ImminentAppointmentYieldsNoJobs(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()
	appt := testAppointment(apptID, 5*time.Minute)

	apptRepo.On("GetByID", ctx, apptID).Return(appt, nil).Once()

	jobs, err := svc.CreateAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	assert.Empty(t, jobs)
	jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReminderService_Create_AppointmentNotFound(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()

	apptRepo.On("GetByID", ctx, apptID).Return(nil, domain.ErrAppointmentNotFound).Once()

	jobs, err := svc.CreateAppointmentReminders(ctx, apptID)

	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
	assert.Nil(t, jobs)
}

func TestReminderService_Cancel(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()

	jobRepo.On("CancelPendingByEntity", ctx, domain.JobAppointmentReminder, apptID).Return(int64(2), nil).Once()

	err := svc.CancelAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	jobRepo.AssertExpectations(t)
}

func TestReminderService_Update_CancelsThenRecreates(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()
	appt := testAppointment(apptID, 2*time.Hour)

	jobRepo.On("CancelPendingByEntity", ctx, domain.JobAppointmentReminder, apptID).Return(int64(2), nil).Once()
	apptRepo.On("GetByID", ctx, apptID).Return(appt, nil).Once()
	jobRepo.On("Create", ctx, mock.Anything).Return(nil).Twice()

	jobs, err := svc.UpdateAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	jobRepo.AssertExpectations(t)
}

func TestReminderService_List(t *testing.T) {
	apptRepo := new(mocks.AppointmentRepository)
	jobRepo := new(mocks.ScheduledJobRepository)
	svc := reminder.NewService(apptRepo, jobRepo)

	ctx := context.Background()
	apptID := uuid.New()
	pending := []domain.ScheduledJob{
		{ID: uuid.New(), Type: domain.JobAppointmentReminder, EntityID: apptID, Status: domain.JobPending},
	}

	jobRepo.On("ListPendingByEntity", ctx, domain.JobAppointmentReminder, apptID).Return(pending, nil).Once()

	jobs, err := svc.GetAppointmentReminders(ctx, apptID)

	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
}
