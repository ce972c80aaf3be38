package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference holds one user's channel and category toggles.
// Exactly one row exists per user; it is created lazily with defaults the
// first time it is read.
type NotificationPreference struct {
	UserID               uuid.UUID `json:"user_id" db:"user_id"`
	EmailEnabled         bool      `json:"email_enabled" db:"email_enabled"`
	PushEnabled          bool      `json:"push_enabled" db:"push_enabled"`
	InAppEnabled         bool      `json:"in_app_enabled" db:"in_app_enabled"`
	AppointmentUpdates   bool      `json:"appointment_updates" db:"appointment_updates"`
	AppointmentReminders bool      `json:"appointment_reminders" db:"appointment_reminders"`
	PaymentNotifications bool      `json:"payment_notifications" db:"payment_notifications"`
	Marketing            bool      `json:"marketing" db:"marketing"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultNotificationPreference returns the row written on first access:
// all channels and core categories on, marketing off.
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:               userID,
		EmailEnabled:         true,
		PushEnabled:          true,
		InAppEnabled:         true,
		AppointmentUpdates:   true,
		AppointmentReminders: true,
		PaymentNotifications: true,
		Marketing:            false,
	}
}

// ChannelEnabled reports whether the user accepts deliveries on the channel.
func (p *NotificationPreference) ChannelEnabled(ch NotificationChannel) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelPush:
		return p.PushEnabled
	case ChannelInApp:
		return p.InAppEnabled
	default:
		return false
	}
}

// AllowsType reports whether the user accepts the category the notification
// type belongs to.
func (p *NotificationPreference) AllowsType(t NotificationType) bool {
	switch t.Category() {
	case CategoryAppointmentUpdates:
		return p.AppointmentUpdates
	case CategoryAppointmentReminders:
		return p.AppointmentReminders
	case CategoryPayments:
		return p.PaymentNotifications
	case CategoryMarketing:
		return p.Marketing
	default:
		return true
	}
}

type UpdatePreferenceInput struct {
	EmailEnabled         *bool `json:"email_enabled,omitempty"`
	PushEnabled          *bool `json:"push_enabled,omitempty"`
	InAppEnabled         *bool `json:"in_app_enabled,omitempty"`
	AppointmentUpdates   *bool `json:"appointment_updates,omitempty"`
	AppointmentReminders *bool `json:"appointment_reminders,omitempty"`
	PaymentNotifications *bool `json:"payment_notifications,omitempty"`
	Marketing            *bool `json:"marketing,omitempty"`
}
