package services

import (
	"context"
	"errors"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/adapters/persistence/repositories"
	"sacco-hub/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Fixed note recorded when an application clears all three review stages.
const approvalCompletionNote = "Application approved after 3-stage review"

// ApplicationNotifier receives terminal application outcomes. Dispatch is
// best-effort; implementations must not return errors.
type ApplicationNotifier interface {
	ApplicationApproved(app *models.Application)
	ApplicationRejected(app *models.Application, reason string)
}

// ApplicationService drives the three-stage entry/exit review workflow
type ApplicationService struct {
	appRepo  repositories.ApplicationRepository
	userRepo repositories.UserRepository
	notifier ApplicationNotifier
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	notifier ApplicationNotifier,
) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// SubmitApplicationInput represents a new entry/exit application
type SubmitApplicationInput struct {
	ApplicationType     string `json:"application_type" validate:"required,oneof=ENTRY EXIT"`
	Reason              string `json:"reason" validate:"required"`
	AdditionalNotes     string `json:"additional_notes"`
	SupportingDocument1 string `json:"supporting_document_1"`
	SupportingDocument2 string `json:"supporting_document_2"`
}

// ReviewInput represents a reviewer decision on the current stage
type ReviewInput struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
	Comments string `json:"comments"`
}

// Submit creates a new application in PENDING state with member details
// prefilled from the submitting user's profile.
func (s *ApplicationService) Submit(ctx context.Context, actor domain.Actor, input *SubmitApplicationInput) (*models.Application, error) {
	if input.ApplicationType != models.ApplicationTypeEntry && input.ApplicationType != models.ApplicationTypeExit {
		return nil, domain.Validationf("application_type", "must be ENTRY or EXIT")
	}
	if input.Reason == "" {
		return nil, domain.Validationf("reason", "reason is required")
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, err
	}

	app := &models.Application{
		UserID:              user.ID,
		ApplicationType:     input.ApplicationType,
		FullName:            user.FullName(),
		PhoneNumber:         user.PhoneNumber,
		Email:               user.Email,
		Reason:              input.Reason,
		AdditionalNotes:     input.AdditionalNotes,
		SupportingDocument1: input.SupportingDocument1,
		SupportingDocument2: input.SupportingDocument2,
		Status:              models.ApplicationStatusPending,
		CurrentStage:        0,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	logrus.Infof("📨 Application %d submitted by member %d (%s)", app.ID, user.ID, app.ApplicationType)
	return app, nil
}

// Get returns a single application. Members see only their own.
func (s *ApplicationService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("application")
		}
		return nil, err
	}
	if !actor.CanAccessMember(app.UserID) {
		return nil, domain.ErrForbidden
	}
	return app, nil
}

// ListMine returns the calling member's applications
func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Actor) ([]*models.Application, error) {
	return s.appRepo.ListByUser(ctx, actor.UserID)
}

// List returns a page of all applications (admin only)
func (s *ApplicationService) List(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.Application, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.appRepo.List(ctx, offset, limit)
}

// ListPending returns all applications awaiting review (admin only)
func (s *ApplicationService) ListPending(ctx context.Context, actor domain.Actor) ([]*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.appRepo.ListPending(ctx)
}

// Review applies one reviewer decision to the application's current stage.
//
// A REJECT at any stage is terminal. An APPROVE advances to the next stage,
// or to APPROVED when the third stage passes. The persisted update is guarded
// by the status the application held when it was read, so of two concurrent
// reviewers exactly one wins; the loser gets a ConflictError.
func (s *ApplicationService) Review(ctx context.Context, actor domain.Actor, id uint, input *ReviewInput) (*models.Application, error) {
	if !actor.CanReview() {
		return nil, domain.ErrForbidden
	}

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("application")
		}
		return nil, err
	}

	if app.IsTerminal() {
		return nil, domain.Conflictf("application is already %s", app.Status)
	}

	decision := domain.Decision(input.Decision)
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, domain.Validationf("decision", "must be APPROVE or REJECT")
	}
	if decision == domain.DecisionReject && input.Comments == "" {
		return nil, domain.Validationf("comments", "comments are required when rejecting")
	}

	fromStatus := app.Status
	stage := currentReviewStage(app)
	now := time.Now()

	recordStageReview(app, stage, actor.UserID, now, input.Comments, string(decision))

	switch {
	case decision == domain.DecisionReject:
		app.Status = models.ApplicationStatusRejected
		app.FinalDecision = models.ApplicationStatusRejected
		app.FinalComments = input.Comments
		app.DecidedAt = &now

	case stage < 2:
		// Approving the stage-(s+1) review means the application now awaits
		// stage-(s+2), hence the status label skips ahead of current_stage.
		app.CurrentStage = stage + 1
		if stage == 0 {
			app.Status = models.ApplicationStatusStage2
		} else {
			app.Status = models.ApplicationStatusStage3
		}

	default:
		app.Status = models.ApplicationStatusApproved
		app.CurrentStage = 3
		app.FinalDecision = models.ApplicationStatusApproved
		app.FinalComments = approvalCompletionNote
		app.DecidedAt = &now
	}

	updated, err := s.appRepo.UpdateFromStatus(ctx, app, fromStatus)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.Conflictf("application was reviewed concurrently, re-fetch and retry")
	}

	logrus.Infof("📋 Application %d reviewed: %s at stage %d by admin %d → %s",
		app.ID, decision, stage+1, actor.UserID, app.Status)

	if s.notifier != nil && app.IsTerminal() {
		if app.Status == models.ApplicationStatusApproved {
			s.notifier.ApplicationApproved(app)
		} else {
			s.notifier.ApplicationRejected(app, input.Comments)
		}
	}

	return app, nil
}

// CountPending returns the number of applications awaiting review
func (s *ApplicationService) CountPending(ctx context.Context) (int64, error) {
	return s.appRepo.CountPending(ctx)
}

// currentReviewStage returns the zero-based stage the next review applies to.
// A fresh application has current_stage=0 and status=PENDING together; both
// are checked so a divergent record still routes to stage 1.
func currentReviewStage(app *models.Application) int {
	if app.CurrentStage == 0 || app.Status == models.ApplicationStatusPending {
		return 0
	}
	if app.CurrentStage >= 2 {
		return 2
	}
	return app.CurrentStage
}

// recordStageReview fills the review slot for the given zero-based stage
func recordStageReview(app *models.Application, stage int, reviewerID uint, at time.Time, comments, decision string) {
	switch stage {
	case 0:
		app.Stage1ReviewerID = &reviewerID
		app.Stage1ReviewedAt = &at
		app.Stage1Comments = comments
		app.Stage1Decision = decision
	case 1:
		app.Stage2ReviewerID = &reviewerID
		app.Stage2ReviewedAt = &at
		app.Stage2Comments = comments
		app.Stage2Decision = decision
	case 2:
		app.Stage3ReviewerID = &reviewerID
		app.Stage3ReviewedAt = &at
		app.Stage3Comments = comments
		app.Stage3Decision = decision
	}
}
