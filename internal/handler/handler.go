package handler

import "carebook/internal/service"

type Handlers struct {
	Auth         *AuthHandler
	Notification *NotificationHandler
	Preference   *PreferenceHandler
	Reminder     *ReminderHandler
	Jobs         *JobsHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		Notification: NewNotificationHandler(services.Notification),
		Preference:   NewPreferenceHandler(services.Preference),
		Reminder:     NewReminderHandler(services.Reminder),
		Jobs:         NewJobsHandler(services.Notification, services.Jobs),
	}
}
