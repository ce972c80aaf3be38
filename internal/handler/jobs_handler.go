package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carebook/internal/middleware"
	"carebook/internal/repository"
	"carebook/internal/service/jobs"
	"carebook/internal/service/notification"
)

// JobsHandler exposes the poll-cycle triggers. They are normally hit by the
// in-process poller; the endpoints exist so an external scheduler or an
// operator can drive the same cycles by hand.
type JobsHandler struct {
	notifService notification.Service
	jobsService  jobs.Service
}

func NewJobsHandler(notifService notification.Service, jobsService jobs.Service) *JobsHandler {
	return &JobsHandler{
		notifService: notifService,
		jobsService:  jobsService,
	}
}

func (h *JobsHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid job ID")
	}

	job, err := h.jobsService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return middleware.NotFound("Job not found")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(job)
}

func (h *JobsHandler) ProcessScheduled(c *fiber.Ctx) error {
	processed, err := h.notifService.ProcessScheduled(c.Context(), time.Now())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"processed": processed,
	})
}

func (h *JobsHandler) ProcessReminders(c *fiber.Ctx) error {
	completed, err := h.jobsService.ProcessDueReminders(c.Context(), time.Now())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"completed": completed,
	})
}

func (h *JobsHandler) Cleanup(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 1 {
		return middleware.BadRequest("Invalid retention days")
	}

	deleted, err := h.jobsService.CleanupOldJobs(c.Context(), days)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deleted": deleted,
	})
}
