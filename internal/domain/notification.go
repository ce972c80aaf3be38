package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Notification struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	Type        NotificationType   `json:"type" db:"type"`
	Title       string             `json:"title" db:"title"`
	Message     string             `json:"message" db:"message"`
	Data        json.RawMessage    `json:"data,omitempty" db:"data"`
	Channels    pq.StringArray     `json:"channels" db:"channels"`
	Status      NotificationStatus `json:"status" db:"status"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty" db:"scheduled_at"`
	SentAt      *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt      *time.Time         `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifAppointmentBooked      NotificationType = "APPOINTMENT_BOOKED"
	NotifAppointmentAccepted    NotificationType = "APPOINTMENT_ACCEPTED"
	NotifAppointmentRejected    NotificationType = "APPOINTMENT_REJECTED"
	NotifAppointmentCancelled   NotificationType = "APPOINTMENT_CANCELLED"
	NotifAppointmentRescheduled NotificationType = "APPOINTMENT_RESCHEDULED"
	NotifAppointmentReminder    NotificationType = "APPOINTMENT_REMINDER"
	NotifMeetingLinkReady       NotificationType = "MEETING_LINK_READY"
	NotifPaymentConfirmed       NotificationType = "PAYMENT_CONFIRMED"
	NotifDoctorVerified         NotificationType = "DOCTOR_VERIFIED"
	NotifDoctorRejected         NotificationType = "DOCTOR_REJECTED"
	NotifSystem                 NotificationType = "SYSTEM"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationSent      NotificationStatus = "SENT"
	NotificationDelivered NotificationStatus = "DELIVERED"
	NotificationFailed    NotificationStatus = "FAILED"
)

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelInApp NotificationChannel = "IN_APP"
	ChannelPush  NotificationChannel = "PUSH"
)

// NotificationCategory groups notification types for the coarse per-user
// preference toggles.
type NotificationCategory string

const (
	CategoryAppointmentUpdates   NotificationCategory = "appointment_updates"
	CategoryAppointmentReminders NotificationCategory = "appointment_reminders"
	CategoryPayments             NotificationCategory = "payment_notifications"
	CategoryMarketing            NotificationCategory = "marketing"
	CategoryAlways               NotificationCategory = "always"
)

// Category maps every notification type to its preference category. Types
// without a dedicated toggle (account and system notices) are always eligible.
func (t NotificationType) Category() NotificationCategory {
	switch t {
	case NotifAppointmentBooked, NotifAppointmentAccepted, NotifAppointmentRejected,
		NotifAppointmentCancelled, NotifAppointmentRescheduled:
		return CategoryAppointmentUpdates
	case NotifAppointmentReminder, NotifMeetingLinkReady:
		return CategoryAppointmentReminders
	case NotifPaymentConfirmed:
		return CategoryPayments
	case NotifDoctorVerified, NotifDoctorRejected, NotifSystem:
		return CategoryAlways
	default:
		return CategoryAlways
	}
}

// IsTerminal reports whether the notification can no longer change status.
func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationDelivered || s == NotificationFailed
}

type CreateNotificationInput struct {
	UserID      uuid.UUID             `json:"user_id" validate:"required"`
	Type        NotificationType      `json:"type" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Message     string                `json:"message"`
	Data        map[string]string     `json:"data,omitempty"`
	Channels    []NotificationChannel `json:"channels" validate:"required,min=1"`
	ScheduledAt *time.Time            `json:"scheduled_at,omitempty"`
}

type BulkNotificationInput struct {
	UserIDs  []uuid.UUID           `json:"user_ids" validate:"required,min=1"`
	Type     NotificationType      `json:"type" validate:"required"`
	Title    string                `json:"title" validate:"required"`
	Message  string                `json:"message"`
	Data     map[string]string     `json:"data,omitempty"`
	Channels []NotificationChannel `json:"channels" validate:"required,min=1"`
}

// ChannelResult is the outcome of one delivery attempt on one channel.
// Channel failures are recorded here, never raised as errors, so one failing
// channel does not abort its siblings.
type ChannelResult struct {
	Channel     NotificationChannel `json:"channel"`
	Success     bool                `json:"success"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	Error       string              `json:"error,omitempty"`
}
