package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Appointment is the read-only view of an appointment the notification core
// consumes. The booking workflow owns the rows; this core never mutates them.
type Appointment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ScheduledAt   time.Time  `json:"scheduled_at" db:"scheduled_at"`
	Status        string     `json:"status" db:"status"`
	Type          string     `json:"type" db:"type"`
	PatientUserID uuid.UUID  `json:"patient_user_id" db:"patient_user_id"`
	PatientName   string     `json:"patient_name" db:"patient_name"`
	DoctorName    string     `json:"doctor_name" db:"doctor_name"`
	ClinicName    string     `json:"clinic_name" db:"clinic_name"`
	ClinicAddress string     `json:"clinic_address" db:"clinic_address"`
	MeetingLink   *string    `json:"meeting_link,omitempty" db:"meeting_link"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

const (
	AppointmentStatusScheduled = "SCHEDULED"
	AppointmentStatusCancelled = "CANCELLED"
	AppointmentStatusCompleted = "COMPLETED"
)
