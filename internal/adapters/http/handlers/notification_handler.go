package handlers

import (
	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/pagination"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler exposes the SMS notification log and templates
type NotificationHandler struct {
	smsService *services.SMSService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(smsService *services.SMSService) *NotificationHandler {
	return &NotificationHandler{smsService: smsService}
}

// BulkSendRequest represents an admin broadcast request
type BulkSendRequest struct {
	RecipientIDs []uint `json:"recipient_ids" validate:"required,min=1"`
	Message      string `json:"message" validate:"required,max=320"`
}

// ListMine returns the calling member's SMS notifications
// @Summary List own notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/mine [get]
func (h *NotificationHandler) ListMine(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	notifications, err := h.smsService.ListMine(c.Context(), actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Notifications retrieved successfully", notifications)
}

// List returns a page of all SMS notifications (admin)
// @Summary List all notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	notifications, total, err := h.smsService.ListAll(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Notifications retrieved successfully",
		pagination.NewResponse(notifications, params, total))
}

// ListTemplates returns all notification templates (admin)
// @Summary List notification templates
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/templates [get]
func (h *NotificationHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.smsService.ListTemplates(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Templates retrieved successfully", templates)
}

// UpdateTemplate updates a notification template by name (admin)
// @Summary Update notification template
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Template name"
// @Param body body services.UpdateTemplateInput true "Template fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/templates/{name} [put]
func (h *NotificationHandler) UpdateTemplate(c *fiber.Ctx) error {
	var input services.UpdateTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tpl, err := h.smsService.UpdateTemplate(c.Context(), c.Params("name"), &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Template updated successfully", tpl)
}

// SendBulk sends an SMS to multiple members (admin)
// @Summary Send bulk SMS
// @Description Send the same message to multiple members. Individual failures are recorded per recipient.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkSendRequest true "Broadcast request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /notifications/send [post]
func (h *NotificationHandler) SendBulk(c *fiber.Ctx) error {
	var req BulkSendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.RecipientIDs) == 0 {
		return response.BadRequest(c, "At least one recipient is required")
	}
	if req.Message == "" {
		return response.BadRequest(c, "A message is required")
	}

	results := h.smsService.SendBulk(c.Context(), req.RecipientIDs, req.Message)

	return response.Success(c, "Messages dispatched", results)
}
