package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Appointment  AppointmentRepository
	Notification NotificationRepository
	Preference   PreferenceRepository
	ScheduledJob ScheduledJobRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Appointment:  NewAppointmentRepository(db),
		Notification: NewNotificationRepository(db),
		Preference:   NewPreferenceRepository(db),
		ScheduledJob: NewScheduledJobRepository(db),
	}
}
