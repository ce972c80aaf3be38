package mocks

import (
	"context"

	"carebook/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}
