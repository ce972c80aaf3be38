package mocks

import (
	"context"
	"time"

	"carebook/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ScheduledJobRepository struct {
	mock.Mock
}

func (m *ScheduledJobRepository) Create(ctx context.Context, job *domain.ScheduledJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *ScheduledJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledJob), args.Error(1)
}

func (m *ScheduledJobRepository) ListDue(ctx context.Context, jobType domain.JobType, now time.Time) ([]domain.ScheduledJob, error) {
	args := m.Called(ctx, jobType, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduledJob), args.Error(1)
}

func (m *ScheduledJobRepository) ListPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) ([]domain.ScheduledJob, error) {
	args := m.Called(ctx, jobType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduledJob), args.Error(1)
}

func (m *ScheduledJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ScheduledJobRepository) CancelPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) (int64, error) {
	args := m.Called(ctx, jobType, entityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ScheduledJobRepository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
