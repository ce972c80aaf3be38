package preference

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carebook/internal/domain"
	"carebook/internal/repository"
)

// Service is the preference store. Get never fails on a missing row: the
// default record is created on first access so every user always has exactly
// one preference row.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferenceInput) (*domain.NotificationPreference, error)
}

type service struct {
	prefRepo repository.PreferenceRepository
}

func NewService(prefRepo repository.PreferenceRepository) Service {
	return &service{prefRepo: prefRepo}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	pref, err := s.prefRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	if pref != nil {
		return pref, nil
	}

	pref = domain.DefaultNotificationPreference(userID)
	if err := s.prefRepo.Create(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return pref, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferenceInput) (*domain.NotificationPreference, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.EmailEnabled != nil {
		pref.EmailEnabled = *input.EmailEnabled
	}
	if input.PushEnabled != nil {
		pref.PushEnabled = *input.PushEnabled
	}
	if input.InAppEnabled != nil {
		pref.InAppEnabled = *input.InAppEnabled
	}
	if input.AppointmentUpdates != nil {
		pref.AppointmentUpdates = *input.AppointmentUpdates
	}
	if input.AppointmentReminders != nil {
		pref.AppointmentReminders = *input.AppointmentReminders
	}
	if input.PaymentNotifications != nil {
		pref.PaymentNotifications = *input.PaymentNotifications
	}
	if input.Marketing != nil {
		pref.Marketing = *input.Marketing
	}

	if err := s.prefRepo.Update(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return pref, nil
}
