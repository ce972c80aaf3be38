package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

// AppointmentRepository is the read-only view the notification core has of
// the booking workflow's data. Patient and doctor details are denormalized
// into the row via joins so callers get a self-contained snapshot.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
}

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	var appt domain.Appointment
	query := `
		SELECT a.id, a.scheduled_at, a.status, a.type, a.meeting_link, a.updated_at,
		       p.id AS patient_user_id, p.full_name AS patient_name,
		       d.full_name AS doctor_name,
		       dp.clinic_name, dp.clinic_address
		FROM appointments a
		JOIN users p ON p.id = a.patient_id
		JOIN users d ON d.id = a.doctor_id
		JOIN doctor_profiles dp ON dp.user_id = a.doctor_id
		WHERE a.id = $1`

	err := r.db.GetContext(ctx, &appt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
