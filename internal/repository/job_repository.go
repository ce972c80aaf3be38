package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

var ErrJobNotFound = errors.New("scheduled job not found")

type ScheduledJobRepository interface {
	Create(ctx context.Context, job *domain.ScheduledJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error)
	ListDue(ctx context.Context, jobType domain.JobType, now time.Time) ([]domain.ScheduledJob, error)
	ListPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) ([]domain.ScheduledJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error
	CancelPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) (int64, error)
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type scheduledJobRepository struct {
	db *sqlx.DB
}

func NewScheduledJobRepository(db *sqlx.DB) ScheduledJobRepository {
	return &scheduledJobRepository{db: db}
}

func (r *scheduledJobRepository) Create(ctx context.Context, job *domain.ScheduledJob) error {
	query := `
		INSERT INTO scheduled_jobs (id, type, entity_id, scheduled_at, status, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		job.ID, job.Type, job.EntityID, job.ScheduledAt, job.Status, job.Data,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (r *scheduledJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	query := `SELECT * FROM scheduled_jobs WHERE id = $1`
	err := r.db.GetContext(ctx, &job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListDue selects pending jobs whose scheduled time has arrived. Only the
// pending status is eligible, so cancelled and already-executed jobs never
// reappear on a later poll.
func (r *scheduledJobRepository) ListDue(ctx context.Context, jobType domain.JobType, now time.Time) ([]domain.ScheduledJob, error) {
	var jobs []domain.ScheduledJob
	query := `
		SELECT * FROM scheduled_jobs
		WHERE type = $1 AND status = $2 AND scheduled_at <= $3`
	err := r.db.SelectContext(ctx, &jobs, query, jobType, domain.JobPending, now)
	return jobs, err
}

func (r *scheduledJobRepository) ListPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) ([]domain.ScheduledJob, error) {
	var jobs []domain.ScheduledJob
	query := `
		SELECT * FROM scheduled_jobs
		WHERE type = $1 AND entity_id = $2 AND status = $3
		ORDER BY scheduled_at ASC`
	err := r.db.SelectContext(ctx, &jobs, query, jobType, entityID, domain.JobPending)
	return jobs, err
}

func (r *scheduledJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	query := `UPDATE scheduled_jobs SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *scheduledJobRepository) CancelPendingByEntity(ctx context.Context, jobType domain.JobType, entityID uuid.UUID) (int64, error) {
	query := `
		UPDATE scheduled_jobs SET status = $4, updated_at = NOW()
		WHERE type = $1 AND entity_id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, jobType, entityID, domain.JobPending, domain.JobCancelled)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTerminalBefore purges completed, failed and cancelled jobs last
// touched before the cutoff. Pending jobs are never deleted regardless of age.
func (r *scheduledJobRepository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM scheduled_jobs
		WHERE status IN ($1, $2, $3) AND updated_at < $4`
	res, err := r.db.ExecContext(ctx, query, domain.JobCompleted, domain.JobFailed, domain.JobCancelled, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
