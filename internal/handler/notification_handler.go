package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carebook/internal/domain"
	"carebook/internal/middleware"
	"carebook/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not found")
	}

	unreadOnly := c.Query("unread_only") == "true"

	params := domain.DefaultPagination()
	if page, _ := strconv.Atoi(c.Query("page", "1")); page > 0 {
		params.Page = page
	}
	if pageSize, _ := strconv.Atoi(c.Query("page_size", "20")); pageSize > 0 && pageSize <= 100 {
		params.PageSize = pageSize
	}

	result, err := h.notifService.List(c.Context(), userID, unreadOnly, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not found")
	}

	count, err := h.notifService.GetUnreadCount(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not found")
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	if err := h.notifService.MarkAsRead(c.Context(), userID, notifID); err != nil {
		if errors.Is(err, notification.ErrNotOwned) {
			return middleware.Forbidden("Notification belongs to another user")
		}
		if errors.Is(err, notification.ErrNotDelivered) {
			return middleware.Conflict("Notification has not been delivered")
		}
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	if userID == uuid.Nil {
		return middleware.Unauthorized("User not found")
	}

	if err := h.notifService.MarkAllAsRead(c.Context(), userID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

// Create handles admin-initiated notifications, immediate or scheduled.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notif, err := h.notifService.Create(c.Context(), input)
	if err != nil {
		if errors.Is(err, notification.ErrNoChannels) {
			return middleware.BadRequest("At least one channel is required")
		}
		if errors.Is(err, notification.ErrUserNotFound) {
			return middleware.NotFound("Recipient not found")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(notif)
}

func (h *NotificationHandler) SendBulk(c *fiber.Ctx) error {
	var input domain.BulkNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if len(input.UserIDs) == 0 {
		return middleware.BadRequest("At least one recipient is required")
	}

	created, err := h.notifService.SendBulk(c.Context(), input)
	if err != nil {
		if errors.Is(err, notification.ErrNoChannels) {
			return middleware.BadRequest("At least one channel is required")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created": created,
		"count":   len(created),
	})
}
