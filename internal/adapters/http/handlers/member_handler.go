package handlers

import (
	"strconv"

	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/pagination"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member profile and dependents endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// parseIDParam reads a :param as uint
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// ============================================================
// Profile
// ============================================================

// GetProfile returns the calling member's profile
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *MemberHandler) GetProfile(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	user, err := h.memberService.GetProfile(c.Context(), actor, actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Profile retrieved successfully", user.ToResponse())
}

// UpdateProfile updates the calling member's profile
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile [put]
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.memberService.UpdateProfile(c.Context(), actor, actor.UserID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Profile updated successfully", user.ToResponse())
}

// ============================================================
// Admin: user management
// ============================================================

// ListUsers returns a page of users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *MemberHandler) ListUsers(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	params := pagination.GetParams(c)

	users, total, err := h.memberService.ListUsers(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(users, params, total))
}

// GetUser returns one user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *MemberHandler) GetUser(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.memberService.GetProfile(c.Context(), actor, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "User retrieved successfully", user.ToResponse())
}

// SetUserActiveRequest toggles a user's active flag
type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetUserActive activates or deactivates a user account
// @Summary Activate or deactivate user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetUserActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id}/active [patch]
func (h *MemberHandler) SetUserActive(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetUserActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return response.BadRequest(c, "is_active is required")
	}

	user, err := h.memberService.SetUserActive(c.Context(), actor, id, *req.IsActive)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}

// SetUserRoleRequest changes a user's role
type SetUserRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole changes a user's role
// @Summary Change user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetUserRoleRequest true "New role (ADMIN or MEMBER)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id}/role [patch]
func (h *MemberHandler) SetUserRole(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetUserRoleRequest
	if err := c.BodyParser(&req); err != nil || req.Role == "" {
		return response.BadRequest(c, "role is required")
	}

	user, err := h.memberService.SetUserRole(c.Context(), actor, id, req.Role)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "User role updated successfully", user.ToResponse())
}

// DeleteUser soft-deletes a user account
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *MemberHandler) DeleteUser(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.memberService.DeleteUser(c.Context(), actor, id); err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ============================================================
// Spouse
// ============================================================

// GetSpouse returns the calling member's spouse details
// @Summary Get spouse details
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/spouse [get]
func (h *MemberHandler) GetSpouse(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	spouse, err := h.memberService.GetSpouse(c.Context(), actor, actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Spouse details retrieved successfully", spouse)
}

// UpsertSpouse creates or replaces the calling member's spouse details
// @Summary Create or update spouse details
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SpouseInput true "Spouse details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/spouse [put]
func (h *MemberHandler) UpsertSpouse(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.SpouseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}

	spouse, err := h.memberService.UpsertSpouse(c.Context(), actor, actor.UserID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Spouse details saved successfully", spouse)
}

// ============================================================
// Children
// ============================================================

// ListChildren returns the calling member's children
// @Summary List children
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile/children [get]
func (h *MemberHandler) ListChildren(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	children, err := h.memberService.ListChildren(c.Context(), actor, actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Children retrieved successfully", children)
}

// AddChild adds a child record
// @Summary Add child
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChildInput true "Child details"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/children [post]
func (h *MemberHandler) AddChild(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.ChildInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	child, err := h.memberService.AddChild(c.Context(), actor, actor.UserID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Child added successfully", child)
}

// UpdateChild updates a child record
// @Summary Update child
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Param body body services.ChildInput true "Child details"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/children/{id} [put]
func (h *MemberHandler) UpdateChild(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid child ID")
	}

	var input services.ChildInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	child, err := h.memberService.UpdateChild(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Child updated successfully", child)
}

// RemoveChild deletes a child record
// @Summary Remove child
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/children/{id} [delete]
func (h *MemberHandler) RemoveChild(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid child ID")
	}

	if err := h.memberService.RemoveChild(c.Context(), actor, id); err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Child removed successfully", nil)
}

// ============================================================
// Beneficiaries
// ============================================================

// ListBeneficiaries returns the calling member's beneficiaries
// @Summary List beneficiaries
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile/beneficiaries [get]
func (h *MemberHandler) ListBeneficiaries(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	beneficiaries, err := h.memberService.ListBeneficiaries(c.Context(), actor, actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Beneficiaries retrieved successfully", beneficiaries)
}

// AddBeneficiary adds a beneficiary
// @Summary Add beneficiary
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BeneficiaryInput true "Beneficiary details"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/beneficiaries [post]
func (h *MemberHandler) AddBeneficiary(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.BeneficiaryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.memberService.AddBeneficiary(c.Context(), actor, actor.UserID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Beneficiary added successfully", b)
}

// UpdateBeneficiary updates a beneficiary
// @Summary Update beneficiary
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Beneficiary ID"
// @Param body body services.BeneficiaryInput true "Beneficiary details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/beneficiaries/{id} [put]
func (h *MemberHandler) UpdateBeneficiary(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid beneficiary ID")
	}

	var input services.BeneficiaryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.memberService.UpdateBeneficiary(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Beneficiary updated successfully", b)
}

// MarkBeneficiaryDeceased marks a beneficiary as deceased
// @Summary Mark beneficiary deceased
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Beneficiary ID"
// @Param body body services.MarkDeceasedInput true "Death details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/beneficiaries/{id}/deceased [post]
func (h *MemberHandler) MarkBeneficiaryDeceased(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid beneficiary ID")
	}

	var input services.MarkDeceasedInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.memberService.MarkBeneficiaryDeceased(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Beneficiary marked deceased", b)
}

// ReplaceBeneficiary replaces a deceased beneficiary
// @Summary Replace deceased beneficiary
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Beneficiary ID"
// @Param body body services.BeneficiaryInput true "Replacement beneficiary"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/beneficiaries/{id}/replace [post]
func (h *MemberHandler) ReplaceBeneficiary(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid beneficiary ID")
	}

	var input services.BeneficiaryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.memberService.ReplaceBeneficiary(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Beneficiary replaced successfully", b)
}

// RemoveBeneficiary deletes a beneficiary
// @Summary Remove beneficiary
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Beneficiary ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/beneficiaries/{id} [delete]
func (h *MemberHandler) RemoveBeneficiary(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid beneficiary ID")
	}

	if err := h.memberService.RemoveBeneficiary(c.Context(), actor, id); err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Beneficiary removed successfully", nil)
}

// ============================================================
// Next of kin
// ============================================================

// GetNextOfKin returns the calling member's next of kin
// @Summary Get next of kin
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/next-of-kin [get]
func (h *MemberHandler) GetNextOfKin(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	nok, err := h.memberService.GetNextOfKin(c.Context(), actor, actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Next of kin retrieved successfully", nok)
}

// UpsertNextOfKin creates or replaces the calling member's next of kin
// @Summary Create or update next of kin
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.NextOfKinInput true "Next of kin details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/next-of-kin [put]
func (h *MemberHandler) UpsertNextOfKin(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	var input services.NextOfKinInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}

	nok, err := h.memberService.UpsertNextOfKin(c.Context(), actor, actor.UserID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Next of kin saved successfully", nok)
}
