package handlers

import (
	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/pagination"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles entry/exit application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// Submit handles application submission
// @Summary Submit entry/exit application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitApplicationInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.SubmitApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.Submit(c.Context(), actor, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Application submitted successfully", app)
}

// Get returns one application
// @Summary Get application by ID
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.appService.Get(c.Context(), actor, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Application retrieved successfully", app)
}

// ListMine returns the calling member's applications
// @Summary List own applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /applications/mine [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	apps, err := h.appService.ListMine(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Applications retrieved successfully", apps)
}

// List returns a page of all applications (admin)
// @Summary List all applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	params := pagination.GetParams(c)

	apps, total, err := h.appService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Applications retrieved successfully",
		pagination.NewResponse(apps, params, total))
}

// ListPending returns all applications awaiting review (admin)
// @Summary List pending applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /applications/pending [get]
func (h *ApplicationHandler) ListPending(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	apps, err := h.appService.ListPending(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Pending applications retrieved successfully", apps)
}

// Review applies a reviewer decision to the application's current stage
// @Summary Review application
// @Description Approve or reject the current review stage
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.ReviewInput true "Review decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/review [post]
func (h *ApplicationHandler) Review(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.Review(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Application reviewed successfully", app)
}
