package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"carebook/internal/domain"
	"carebook/internal/repository"
	"carebook/internal/service/dispatch"
	"carebook/internal/service/preference"
)

var (
	ErrNoChannels   = errors.New("at least one channel is required")
	ErrUserNotFound = errors.New("user not found")
	ErrNotOwned     = errors.New("notification does not belong to user")
	ErrNotDelivered = errors.New("notification has not been delivered")
)

const unreadCacheTTL = 5 * time.Minute

// Service is the notification engine. It owns the Notification state machine:
// creation decides immediate-vs-deferred, Deliver runs the channel fan-out and
// persists the aggregate outcome, ProcessScheduled is the poll re-entry point
// for deferred sends.
type Service interface {
	Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error)
	Deliver(ctx context.Context, notif *domain.Notification) ([]domain.ChannelResult, error)
	SendBulk(ctx context.Context, input domain.BulkNotificationInput) ([]*domain.Notification, error)
	ProcessScheduled(ctx context.Context, now time.Time) (int, error)

	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notifID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	notifRepo  repository.NotificationRepository
	userRepo   repository.UserRepository
	prefSvc    preference.Service
	dispatcher dispatch.Dispatcher
	redis      *redis.Client
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	prefSvc preference.Service,
	dispatcher dispatch.Dispatcher,
	redisClient *redis.Client,
) Service {
	return &service{
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		prefSvc:    prefSvc,
		dispatcher: dispatcher,
		redis:      redisClient,
	}
}

// Create persists the notification and, unless it is scheduled for the
// future, attempts delivery immediately. The returned notification reflects
// the post-delivery state for immediate sends.
func (s *service) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	if len(input.Channels) == 0 {
		return nil, ErrNoChannels
	}

	var data json.RawMessage
	if input.Data != nil {
		b, err := json.Marshal(input.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		data = b
	}

	channels := make([]string, 0, len(input.Channels))
	for _, ch := range input.Channels {
		channels = append(channels, string(ch))
	}

	notif := &domain.Notification{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Message:  input.Message,
		Data:     data,
		Channels: channels,
		Status:   domain.NotificationSent,
	}

	deferred := input.ScheduledAt != nil && input.ScheduledAt.After(time.Now())
	if deferred {
		notif.Status = domain.NotificationPending
		notif.ScheduledAt = input.ScheduledAt
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if !deferred {
		if _, err := s.Deliver(ctx, notif); err != nil {
			return nil, err
		}
	}

	return notif, nil
}

// Deliver fans out across the requested channels and aggregates the outcome:
// DELIVERED only when every requested channel succeeded, FAILED otherwise.
// An opted-out channel yields no result and counts against the aggregate.
func (s *service) Deliver(ctx context.Context, notif *domain.Notification) ([]domain.ChannelResult, error) {
	if notif.Status.IsTerminal() {
		return nil, fmt.Errorf("notification %s already in terminal status %s", notif.ID, notif.Status)
	}

	user, err := s.userRepo.GetByID(ctx, notif.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	pref, err := s.prefSvc.Get(ctx, notif.UserID)
	if err != nil {
		return nil, err
	}

	results := s.dispatcher.Dispatch(ctx, notif, user, pref)

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	status := domain.NotificationFailed
	if succeeded == len(notif.Channels) {
		status = domain.NotificationDelivered
	}

	sentAt := time.Now()
	if err := s.notifRepo.UpdateDeliveryStatus(ctx, notif.ID, status, sentAt); err != nil {
		return results, fmt.Errorf("failed to persist delivery status: %w", err)
	}
	notif.Status = status
	notif.SentAt = &sentAt

	s.invalidateUnreadCount(ctx, notif.UserID)

	return results, nil
}

// SendBulk creates one notification per user. Creations are independent; a
// failure for one user is logged and does not roll back the others.
func (s *service) SendBulk(ctx context.Context, input domain.BulkNotificationInput) ([]*domain.Notification, error) {
	if len(input.Channels) == 0 {
		return nil, ErrNoChannels
	}

	created := make([]*domain.Notification, 0, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		notif, err := s.Create(ctx, domain.CreateNotificationInput{
			UserID:   userID,
			Type:     input.Type,
			Title:    input.Title,
			Message:  input.Message,
			Data:     input.Data,
			Channels: input.Channels,
		})
		if err != nil {
			log.Printf("bulk notification: failed for user %s: %v", userID, err)
			continue
		}
		created = append(created, notif)
	}

	return created, nil
}

// ProcessScheduled delivers every PENDING notification whose scheduled time
// has passed and returns the number processed. Safe to re-invoke: the due
// query is status-gated, so a delivered notification never reappears.
func (s *service) ProcessScheduled(ctx context.Context, now time.Time) (int, error) {
	due, err := s.notifRepo.ListDuePending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due notifications: %w", err)
	}

	processed := 0
	for i := range due {
		if _, err := s.Deliver(ctx, &due[i]); err != nil {
			log.Printf("scheduled notification %s: delivery error: %v", due[i].ID, err)
			continue
		}
		processed++
	}

	return processed, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}
	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := unreadCountKey(userID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.redis != nil {
		_ = s.redis.Set(ctx, key, strconv.FormatInt(count, 10), unreadCacheTTL).Err()
	}

	return count, nil
}

// MarkAsRead stamps readAt on a delivered notification owned by the caller.
// readAt never affects delivery status.
func (s *service) MarkAsRead(ctx context.Context, userID, notifID uuid.UUID) error {
	notif, err := s.notifRepo.GetByID(ctx, notifID)
	if err != nil {
		return err
	}
	if notif.UserID != userID {
		return ErrNotOwned
	}
	if notif.Status != domain.NotificationDelivered {
		return ErrNotDelivered
	}

	if err := s.notifRepo.MarkAsRead(ctx, notifID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

func (s *service) invalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, unreadCountKey(userID)).Err()
	}
}

func unreadCountKey(userID uuid.UUID) string {
	return "notif:unread:" + userID.String()
}
