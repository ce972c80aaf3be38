package worker

import (
	"context"
	"log"
	"time"

	"carebook/internal/config"
	"carebook/internal/service/jobs"
	"carebook/internal/service/notification"
)

// Poller drives the deferred-delivery and reminder cycles on a fixed
// interval. Both cycles are idempotent, so overlapping manual triggers
// through the jobs endpoints are harmless.
type Poller struct {
	notifService notification.Service
	jobsService  jobs.Service
	cfg          *config.Config
}

func NewPoller(notifService notification.Service, jobsService jobs.Service, cfg *config.Config) *Poller {
	return &Poller{
		notifService: notifService,
		jobsService:  jobsService,
		cfg:          cfg,
	}
}

// Start launches the poll loops. They run until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go p.pollDue(ctx)
	go p.cleanupJobs(ctx)
}

func (p *Poller) pollDue(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification poller stopped")
			return
		case <-ticker.C:
			now := time.Now()

			if processed, err := p.notifService.ProcessScheduled(ctx, now); err != nil {
				log.Printf("Failed to process scheduled notifications: %v", err)
			} else if processed > 0 {
				log.Printf("Processed %d scheduled notifications", processed)
			}

			if completed, err := p.jobsService.ProcessDueReminders(ctx, now); err != nil {
				log.Printf("Failed to process reminder jobs: %v", err)
			} else if completed > 0 {
				log.Printf("Completed %d reminder jobs", completed)
			}
		}
	}
}

func (p *Poller) cleanupJobs(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Job cleanup worker stopped")
			return
		case <-ticker.C:
			deleted, err := p.jobsService.CleanupOldJobs(ctx, p.cfg.JobRetentionDays)
			if err != nil {
				log.Printf("Failed to clean up old jobs: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Deleted %d old terminal jobs", deleted)
			}
		}
	}
}
