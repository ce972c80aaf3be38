package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

type PreferenceRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	Create(ctx context.Context, pref *domain.NotificationPreference) error
	Update(ctx context.Context, pref *domain.NotificationPreference) error
}

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// GetByUser returns nil without error when no row exists; the preference
// service creates the default row on first access.
func (r *preferenceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	var pref domain.NotificationPreference
	query := `SELECT * FROM notification_preferences WHERE user_id = $1`
	err := r.db.GetContext(ctx, &pref, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) Create(ctx context.Context, pref *domain.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences
			(user_id, email_enabled, push_enabled, in_app_enabled,
			 appointment_updates, appointment_reminders, payment_notifications, marketing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		pref.UserID, pref.EmailEnabled, pref.PushEnabled, pref.InAppEnabled,
		pref.AppointmentUpdates, pref.AppointmentReminders, pref.PaymentNotifications, pref.Marketing,
	).Scan(&pref.CreatedAt, &pref.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// lost a create race; the existing row wins
		return nil
	}
	return err
}

func (r *preferenceRepository) Update(ctx context.Context, pref *domain.NotificationPreference) error {
	query := `
		UPDATE notification_preferences
		SET email_enabled = $2, push_enabled = $3, in_app_enabled = $4,
		    appointment_updates = $5, appointment_reminders = $6,
		    payment_notifications = $7, marketing = $8, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		pref.UserID, pref.EmailEnabled, pref.PushEnabled, pref.InAppEnabled,
		pref.AppointmentUpdates, pref.AppointmentReminders, pref.PaymentNotifications, pref.Marketing,
	).Scan(&pref.UpdatedAt)
}
