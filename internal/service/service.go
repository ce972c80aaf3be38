package service

import (
	"github.com/redis/go-redis/v9"

	"carebook/internal/config"
	"carebook/internal/repository"
	"carebook/internal/service/auth"
	"carebook/internal/service/dispatch"
	"carebook/internal/service/email"
	"carebook/internal/service/jobs"
	"carebook/internal/service/notification"
	"carebook/internal/service/preference"
	"carebook/internal/service/reminder"
	"carebook/internal/service/template"
)

type Services struct {
	Auth         auth.Service
	Email        email.Service
	Preference   preference.Service
	Notification notification.Service
	Reminder     reminder.Service
	Jobs         jobs.Service
}

// NewServices wires the dependency graph. The direction is strictly one-way:
// the reminder scheduler and job processor depend on the notification engine,
// never the reverse.
func NewServices(repos *repository.Repositories, redisClient *redis.Client, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	renderer := template.NewRenderer()
	preferenceService := preference.NewService(repos.Preference)
	dispatcher := dispatch.NewDispatcher(renderer, emailService)
	notificationService := notification.NewService(repos.Notification, repos.User, preferenceService, dispatcher, redisClient)
	reminderService := reminder.NewService(repos.Appointment, repos.ScheduledJob)
	jobsService := jobs.NewService(repos.ScheduledJob, repos.Appointment, notificationService)
	authService := auth.NewService(repos.User, cfg)

	return &Services{
		Auth:         authService,
		Email:        emailService,
		Preference:   preferenceService,
		Notification: notificationService,
		Reminder:     reminderService,
		Jobs:         jobsService,
	}
}
