//go:build integration
// +build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"carebook/internal/domain"
	"carebook/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingNotification(userID uuid.UUID, scheduledAt time.Time) *domain.Notification {
	return &domain.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.NotifSystem,
		Title:       "Scheduled notice",
		Message:     "Deferred delivery",
		Channels:    []string{"IN_APP"},
		Status:      domain.NotificationPending,
		ScheduledAt: &scheduledAt,
	}
}

func TestNotificationDueGating(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()

	repo := repository.NewNotificationRepository(env.DB)
	ctx := context.Background()
	userID := env.SeedUser(t, "patient")
	now := time.Now()

	duePending := pendingNotification(userID, now.Add(-time.Minute))
	futurePending := pendingNotification(userID, now.Add(time.Hour))
	immediate := &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     domain.NotifSystem,
		Title:    "Immediate notice",
		Channels: []string{"IN_APP"},
		Status:   domain.NotificationSent,
	}

	require.NoError(t, repo.Create(ctx, duePending))
	require.NoError(t, repo.Create(ctx, futurePending))
	require.NoError(t, repo.Create(ctx, immediate))

	t.Run("Only Due Pending Rows Returned", func(t *testing.T) {
		due, err := repo.ListDuePending(ctx, now)

		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, duePending.ID, due[0].ID)
	})

	t.Run("Second Poll Returns Nothing After Delivery", func(t *testing.T) {
		require.NoError(t, repo.UpdateDeliveryStatus(ctx, duePending.ID, domain.NotificationDelivered, time.Now()))

		due, err := repo.ListDuePending(ctx, now)

		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("Failed Delivery Also Leaves The Due Set", func(t *testing.T) {
		require.NoError(t, repo.UpdateDeliveryStatus(ctx, futurePending.ID, domain.NotificationFailed, time.Now()))

		due, err := repo.ListDuePending(ctx, now.Add(2*time.Hour))

		require.NoError(t, err)
		assert.Empty(t, due)
	})
}

func TestUnreadCountGatedOnDelivered(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()

	repo := repository.NewNotificationRepository(env.DB)
	ctx := context.Background()
	userID := env.SeedUser(t, "patient")

	delivered := pendingNotification(userID, time.Now().Add(-time.Minute))
	stillPending := pendingNotification(userID, time.Now().Add(time.Hour))

	require.NoError(t, repo.Create(ctx, delivered))
	require.NoError(t, repo.Create(ctx, stillPending))
	require.NoError(t, repo.UpdateDeliveryStatus(ctx, delivered.ID, domain.NotificationDelivered, time.Now()))

	count, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("MarkAllAsRead Skips Undelivered Rows", func(t *testing.T) {
		require.NoError(t, repo.MarkAllAsRead(ctx, userID))

		count, err := repo.CountUnread(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, count)

		pending, err := repo.GetByID(ctx, stillPending.ID)
		require.NoError(t, err)
		assert.Nil(t, pending.ReadAt)
	})
}
