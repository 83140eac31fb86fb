package handlers

import (
	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/pagination"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContributionHandler handles contribution and balance endpoints
type ContributionHandler struct {
	conService *services.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(conService *services.ContributionService) *ContributionHandler {
	return &ContributionHandler{conService: conService}
}

// Submit handles contribution submission
// @Summary Submit contribution
// @Description Record an M-Pesa backed contribution for verification
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitContributionInput true "Contribution data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contributions [post]
func (h *ContributionHandler) Submit(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.SubmitContributionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contribution, err := h.conService.Submit(c.Context(), actor, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Contribution submitted successfully", contribution)
}

// Get returns one contribution
// @Summary Get contribution by ID
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contribution ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contributions/{id} [get]
func (h *ContributionHandler) Get(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contribution ID")
	}

	contribution, err := h.conService.Get(c.Context(), actor, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Contribution retrieved successfully", contribution)
}

// ListMine returns the calling member's contributions
// @Summary List own contributions
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/mine [get]
func (h *ContributionHandler) ListMine(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	contributions, err := h.conService.ListMine(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Contributions retrieved successfully", contributions)
}

// List returns a page of all contributions (admin)
// @Summary List all contributions
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /contributions [get]
func (h *ContributionHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	params := pagination.GetParams(c)

	contributions, total, err := h.conService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Contributions retrieved successfully",
		pagination.NewResponse(contributions, params, total))
}

// ListPending returns all contributions awaiting verification (admin)
// @Summary List pending contributions
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/pending [get]
func (h *ContributionHandler) ListPending(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	contributions, err := h.conService.ListPending(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Pending contributions retrieved successfully", contributions)
}

// Verify applies a verifier decision to a contribution
// @Summary Verify contribution
// @Description Mark a pending contribution VERIFIED or REJECTED
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contribution ID"
// @Param body body services.VerifyContributionInput true "Verification decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contributions/{id}/verify [post]
func (h *ContributionHandler) Verify(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid contribution ID")
	}

	var input services.VerifyContributionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contribution, err := h.conService.Verify(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Contribution processed successfully", contribution)
}

// ListTypes returns contribution types
// @Summary List contribution types
// @Tags Contributions
// @Produce json
// @Success 200 {object} response.Response
// @Router /contributions/types [get]
func (h *ContributionHandler) ListTypes(c *fiber.Ctx) error {
	types, err := h.conService.ListTypes(c.Context(), true)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Contribution types retrieved successfully", types)
}

// MyBalances returns the calling member's balances
// @Summary Get own balances
// @Description Per contribution type: total balance and last contribution date
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/balances/mine [get]
func (h *ContributionHandler) MyBalances(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	balances, err := h.conService.MyBalances(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Balances retrieved successfully", balances)
}

// AllBalances returns every member balance (admin)
// @Summary List all balances
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/balances [get]
func (h *ContributionHandler) AllBalances(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	balances, err := h.conService.AllBalances(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Balances retrieved successfully", balances)
}

// Summaries returns per-type aggregate statistics (admin)
// @Summary List contribution summaries
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/summaries [get]
func (h *ContributionHandler) Summaries(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	summaries, err := h.conService.Summaries(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Summaries retrieved successfully", summaries)
}
