package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"carebook/internal/domain"
	"carebook/internal/service/dispatch"
	"carebook/internal/service/notification"
	"carebook/internal/service/preference"
	"carebook/internal/service/template"
	"carebook/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type testEnv struct {
	notifRepo *mocks.NotificationRepository
	userRepo  *mocks.UserRepository
	prefRepo  *mocks.PreferenceRepository
	emailSvc  *mocks.EmailService
	svc       notification.Service
}

func newTestEnv() *testEnv {
	notifRepo := new(mocks.NotificationRepository)
	userRepo := new(mocks.UserRepository)
	prefRepo := new(mocks.PreferenceRepository)
	emailSvc := new(mocks.EmailService)

	prefSvc := preference.NewService(prefRepo)
	dispatcher := dispatch.NewDispatcher(template.NewRenderer(), emailSvc)

	return &testEnv{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		prefRepo:  prefRepo,
		emailSvc:  emailSvc,
		svc:       notification.NewService(notifRepo, userRepo, prefSvc, dispatcher, nil),
	}
}

func (e *testEnv) expectRecipient(userID uuid.UUID) {
	e.userRepo.On("GetByID", mock.Anything, userID).Return(&domain.User{
		ID:       userID,
		Email:    "alice@example.com",
		FullName: "Alice Tan",
		Role:     string(domain.RolePatient),
	}, nil)
	e.prefRepo.On("GetByUser", mock.Anything, userID).Return(domain.DefaultNotificationPreference(userID), nil)
}

func TestNotificationService_Create_Immediate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()

	env.expectRecipient(userID)
	env.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == userID && n.Status == domain.NotificationSent && n.ScheduledAt == nil
	})).Return(nil).Once()
	env.emailSvc.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationDelivered, mock.Anything).Return(nil).Once()

	notif, err := env.svc.Create(ctx, domain.CreateNotificationInput{
		UserID:   userID,
		Type:     domain.NotifAppointmentBooked,
		Title:    "Appointment Booked",
		Message:  "Your appointment has been booked.",
		Channels: []domain.NotificationChannel{domain.ChannelEmail, domain.ChannelInApp},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.NotificationDelivered, notif.Status)
	assert.NotNil(t, notif.SentAt)
	env.notifRepo.AssertExpectations(t)
	env.emailSvc.AssertExpectations(t)
}

func TestNotificationService_Create_NoChannels(t *testing.T) {
	env := newTestEnv()

	notif, err := env.svc.Create(context.Background(), domain.CreateNotificationInput{
		UserID: uuid.New(),
		Type:   domain.NotifSystem,
		Title:  "Hello",
	})

	assert.ErrorIs(t, err, notification.ErrNoChannels)
	assert.Nil(t, notif)
	env.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_Create_Deferred(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()
	future := time.Now().Add(2 * time.Hour)

	env.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Status == domain.NotificationPending && n.ScheduledAt != nil
	})).Return(nil).Once()

	notif, err := env.svc.Create(ctx, domain.CreateNotificationInput{
		UserID:      userID,
		Type:        domain.NotifSystem,
		Title:       "Maintenance",
		Message:     "Scheduled maintenance tonight.",
		Channels:    []domain.NotificationChannel{domain.ChannelInApp},
		ScheduledAt: &future,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.NotificationPending, notif.Status)
	env.notifRepo.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestNotificationService_Create_PastScheduleDeliversNow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()
	past := time.Now().Add(-time.Minute)

	env.expectRecipient(userID)
	env.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Status == domain.NotificationSent
	})).Return(nil).Once()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationDelivered, mock.Anything).Return(nil).Once()

	notif, err := env.svc.Create(ctx, domain.CreateNotificationInput{
		UserID:      userID,
		Type:        domain.NotifSystem,
		Title:       "Hello",
		Message:     "World",
		Channels:    []domain.NotificationChannel{domain.ChannelInApp},
		ScheduledAt: &past,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.NotificationDelivered, notif.Status)
}

func TestNotificationService_Deliver_OptOutFailsAggregate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()

	env.userRepo.On("GetByID", mock.Anything, userID).Return(&domain.User{
		ID: userID, Email: "alice@example.com", FullName: "Alice Tan",
	}, nil)
	pref := domain.DefaultNotificationPreference(userID)
	pref.EmailEnabled = false
	env.prefRepo.On("GetByUser", mock.Anything, userID).Return(pref, nil)

	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationFailed, mock.Anything).Return(nil).Once()

	notif := &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     domain.NotifAppointmentBooked,
		Channels: []string{"EMAIL", "IN_APP"},
		Status:   domain.NotificationSent,
	}

	results, err := env.svc.Deliver(ctx, notif)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, domain.NotificationFailed, notif.Status)
	env.emailSvc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	env.notifRepo.AssertExpectations(t)
}

func TestNotificationService_Deliver_TerminalStatusRejected(t *testing.T) {
	env := newTestEnv()

	notif := &domain.Notification{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: domain.NotificationDelivered,
	}

	results, err := env.svc.Deliver(context.Background(), notif)

	assert.Error(t, err)
	assert.Nil(t, results)
	env.notifRepo.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_Deliver_UnknownRecipient(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	env.userRepo.On("GetByID", mock.Anything, userID).Return(nil, nil)

	notif := &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: []string{"IN_APP"},
		Status:   domain.NotificationSent,
	}

	_, err := env.svc.Deliver(context.Background(), notif)

	assert.ErrorIs(t, err, notification.ErrUserNotFound)
}

func TestNotificationService_ProcessScheduled(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	due := []domain.Notification{
		{ID: uuid.New(), UserID: userID, Type: domain.NotifSystem, Channels: []string{"IN_APP"}, Status: domain.NotificationPending},
		{ID: uuid.New(), UserID: userID, Type: domain.NotifSystem, Channels: []string{"IN_APP"}, Status: domain.NotificationPending},
	}

	env.expectRecipient(userID)
	env.notifRepo.On("ListDuePending", ctx, now).Return(due, nil).Once()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationDelivered, mock.Anything).Return(nil).Twice()

	processed, err := env.svc.ProcessScheduled(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 2, processed)
	env.notifRepo.AssertExpectations(t)
}

func TestNotificationService_ProcessScheduled_EmptyBatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	env.notifRepo.On("ListDuePending", ctx, now).Return([]domain.Notification{}, nil).Once()

	processed, err := env.svc.ProcessScheduled(ctx, now)

	assert.NoError(t, err)
	assert.Zero(t, processed)
}

func TestNotificationService_ProcessScheduled_ContinuesPastFailures(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()
	missingUser := uuid.New()
	userID := uuid.New()

	due := []domain.Notification{
		{ID: uuid.New(), UserID: missingUser, Type: domain.NotifSystem, Channels: []string{"IN_APP"}, Status: domain.NotificationPending},
		{ID: uuid.New(), UserID: userID, Type: domain.NotifSystem, Channels: []string{"IN_APP"}, Status: domain.NotificationPending},
	}

	env.userRepo.On("GetByID", mock.Anything, missingUser).Return(nil, nil)
	env.expectRecipient(userID)
	env.notifRepo.On("ListDuePending", ctx, now).Return(due, nil).Once()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, due[1].ID, domain.NotificationDelivered, mock.Anything).Return(nil).Once()

	processed, err := env.svc.ProcessScheduled(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestNotificationService_SendBulk(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	env.expectRecipient(userA)
	env.expectRecipient(userB)
	env.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Twice()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationDelivered, mock.Anything).Return(nil).Twice()

	created, err := env.svc.SendBulk(ctx, domain.BulkNotificationInput{
		UserIDs:  []uuid.UUID{userA, userB},
		Type:     domain.NotifSystem,
		Title:    "Announcement",
		Message:  "New features are live.",
		Channels: []domain.NotificationChannel{domain.ChannelInApp},
	})

	assert.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestNotificationService_SendBulk_PartialFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	env.expectRecipient(userA)
	env.expectRecipient(userB)
	env.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == userA
	})).Return(errors.New("insert failed")).Once()
	env.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == userB
	})).Return(nil).Once()
	env.notifRepo.On("UpdateDeliveryStatus", ctx, mock.Anything, domain.NotificationDelivered, mock.Anything).Return(nil).Once()

	created, err := env.svc.SendBulk(ctx, domain.BulkNotificationInput{
		UserIDs:  []uuid.UUID{userA, userB},
		Type:     domain.NotifSystem,
		Title:    "Announcement",
		Message:  "New features are live.",
		Channels: []domain.NotificationChannel{domain.ChannelInApp},
	})

	assert.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, userB, created[0].UserID)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()
	notifID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		env.notifRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID: notifID, UserID: userID, Status: domain.NotificationDelivered,
		}, nil).Once()
		env.notifRepo.On("MarkAsRead", ctx, notifID).Return(nil).Once()

		err := env.svc.MarkAsRead(ctx, userID, notifID)

		assert.NoError(t, err)
		env.notifRepo.AssertExpectations(t)
	})

	t.Run("Not Owned", func(t *testing.T) {
		env.notifRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID: notifID, UserID: uuid.New(), Status: domain.NotificationDelivered,
		}, nil).Once()

		err := env.svc.MarkAsRead(ctx, userID, notifID)

		assert.ErrorIs(t, err, notification.ErrNotOwned)
	})

	t.Run("Not Delivered", func(t *testing.T) {
		env.notifRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID: notifID, UserID: userID, Status: domain.NotificationPending,
		}, nil).Once()

		err := env.svc.MarkAsRead(ctx, userID, notifID)

		assert.ErrorIs(t, err, notification.ErrNotDelivered)
	})
}

func TestNotificationService_GetUnreadCount_NoCache(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()

	env.notifRepo.On("CountUnread", ctx, userID).Return(int64(7), nil).Once()

	count, err := env.svc.GetUnreadCount(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestNotificationService_List(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := uuid.New()
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	env.notifRepo.On("ListByUser", ctx, userID, true, params).Return([]domain.Notification{
		{ID: uuid.New(), UserID: userID},
	}, int64(1), nil).Once()

	resp, err := env.svc.List(ctx, userID, true, params)

	assert.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.TotalItems)
}
