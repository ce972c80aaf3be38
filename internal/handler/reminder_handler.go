package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carebook/internal/domain"
	"carebook/internal/middleware"
	"carebook/internal/service/reminder"
)

// ReminderHandler exposes the reminder scheduling operations the appointment
// workflow calls on booking, cancellation and reschedule.
type ReminderHandler struct {
	reminderService reminder.Service
}

func NewReminderHandler(reminderService reminder.Service) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("appointmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid appointment ID")
	}

	jobs, err := h.reminderService.CreateAppointmentReminders(c.Context(), apptID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return middleware.NotFound("Appointment not found")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (h *ReminderHandler) Cancel(c *fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("appointmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid appointment ID")
	}

	if err := h.reminderService.CancelAppointmentReminders(c.Context(), apptID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *ReminderHandler) Update(c *fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("appointmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid appointment ID")
	}

	jobs, err := h.reminderService.UpdateAppointmentReminders(c.Context(), apptID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return middleware.NotFound("Appointment not found")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (h *ReminderHandler) List(c *fiber.Ctx) error {
	apptID, err := uuid.Parse(c.Params("appointmentId"))
	if err != nil {
		return middleware.BadRequest("Invalid appointment ID")
	}

	jobs, err := h.reminderService.GetAppointmentReminders(c.Context(), apptID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"jobs": jobs,
	})
}
