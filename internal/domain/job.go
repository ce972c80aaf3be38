package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ScheduledJob is a persisted, time-triggered unit of deferred work tied to
// an entity. The only job type today is the appointment reminder; the type
// column keeps the table open for others.
type ScheduledJob struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Type        JobType         `json:"type" db:"type"`
	EntityID    uuid.UUID       `json:"entity_id" db:"entity_id"`
	ScheduledAt time.Time       `json:"scheduled_at" db:"scheduled_at"`
	Status      JobStatus       `json:"status" db:"status"`
	Data        json.RawMessage `json:"data" db:"data"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type JobType string

const (
	JobAppointmentReminder JobType = "appointment_reminder"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job can no longer be executed.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

type ReminderKind string

const (
	ReminderOneHour    ReminderKind = "one_hour"
	ReminderTenMinutes ReminderKind = "ten_minutes"
)

// ReminderPayload is the frozen snapshot a reminder job carries. It holds
// everything needed to fire the notification without re-reading patient or
// doctor rows at execution time; only the appointment itself is re-checked.
type ReminderPayload struct {
	Kind            ReminderKind `json:"kind"`
	UserID          uuid.UUID    `json:"user_id"`
	PatientName     string       `json:"patient_name"`
	DoctorName      string       `json:"doctor_name"`
	AppointmentType string       `json:"appointment_type,omitempty"`
	AppointmentAt   time.Time    `json:"appointment_at"`
	ClinicName      string       `json:"clinic_name,omitempty"`
	ClinicAddress   string       `json:"clinic_address,omitempty"`
	MeetingLink     string       `json:"meeting_link,omitempty"`
}

func (j *ScheduledJob) ReminderPayload() (*ReminderPayload, error) {
	var p ReminderPayload
	if err := json.Unmarshal(j.Data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
