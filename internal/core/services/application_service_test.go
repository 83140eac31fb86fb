package services

import (
	"context"
	"testing"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor  = domain.Actor{UserID: 99, Role: domain.RoleAdmin, FullName: "Alice Admin"}
	memberActor = domain.Actor{UserID: 1, Role: domain.RoleMember, FullName: "Mary Member"}
)

func newApplicationFixture(t *testing.T) (*ApplicationService, *fakeApplicationRepo, *fakeUserRepo, *spyNotifier) {
	t.Helper()
	appRepo := newFakeApplicationRepo()
	userRepo := newFakeUserRepo()
	userRepo.add(&models.User{
		ID:          memberActor.UserID,
		PhoneNumber: "+254712345678",
		FirstName:   "Mary",
		LastName:    "Member",
		Role:        models.RoleMember,
		IsActive:    true,
	})
	notifier := &spyNotifier{}
	return NewApplicationService(appRepo, userRepo, notifier), appRepo, userRepo, notifier
}

func submitEntryApplication(t *testing.T, svc *ApplicationService) *models.Application {
	t.Helper()
	app, err := svc.Submit(context.Background(), memberActor, &SubmitApplicationInput{
		ApplicationType: models.ApplicationTypeEntry,
		Reason:          "Joining the cooperative",
	})
	require.NoError(t, err)
	return app
}

func TestSubmitApplication(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)

	app := submitEntryApplication(t, svc)

	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, 0, app.CurrentStage)
	assert.Equal(t, "Mary Member", app.FullName)
	assert.Equal(t, "+254712345678", app.PhoneNumber)
}

func TestSubmitApplicationValidation(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)

	_, err := svc.Submit(context.Background(), memberActor, &SubmitApplicationInput{
		ApplicationType: "TRANSFER",
		Reason:          "whatever",
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "application_type", vErr.Field)

	_, err = svc.Submit(context.Background(), memberActor, &SubmitApplicationInput{
		ApplicationType: models.ApplicationTypeExit,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
}

func TestReviewRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)
	app := submitEntryApplication(t, svc)

	_, err := svc.Review(context.Background(), memberActor, app.ID, &ReviewInput{Decision: "APPROVE"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestThreeStageApproval(t *testing.T) {
	svc, _, _, notifier := newApplicationFixture(t)
	app := submitEntryApplication(t, svc)
	ctx := context.Background()

	// Stage 1: PENDING -> STAGE_2
	app, err := svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE", Comments: "documents in order"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusStage2, app.Status)
	assert.Equal(t, 1, app.CurrentStage)
	require.NotNil(t, app.Stage1ReviewerID)
	assert.Equal(t, adminActor.UserID, *app.Stage1ReviewerID)
	assert.Empty(t, notifier.approved)

	// Stage 2: STAGE_2 -> STAGE_3
	app, err = svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusStage3, app.Status)
	assert.Equal(t, 2, app.CurrentStage)
	assert.Empty(t, notifier.approved)

	// Stage 3: STAGE_3 -> APPROVED
	app, err = svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	assert.Equal(t, 3, app.CurrentStage)
	// Stage slots record the reviewer's decision; the final decision records
	// the resulting status.
	assert.Equal(t, "APPROVE", app.Stage3Decision)
	assert.Equal(t, models.ApplicationStatusApproved, app.FinalDecision)
	assert.Equal(t, "Application approved after 3-stage review", app.FinalComments)
	require.NotNil(t, app.DecidedAt)
	assert.Equal(t, []uint{app.ID}, notifier.approved)
}

func TestRejectAtAnyStageIsTerminal(t *testing.T) {
	for _, approvalsBefore := range []int{0, 1, 2} {
		svc, _, _, notifier := newApplicationFixture(t)
		app := submitEntryApplication(t, svc)
		ctx := context.Background()

		for i := 0; i < approvalsBefore; i++ {
			var err error
			app, err = svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE"})
			require.NoError(t, err)
		}

		app, err := svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "REJECT", Comments: "missing documents"})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusRejected, app.Status)
		assert.Equal(t, models.ApplicationStatusRejected, app.FinalDecision)
		assert.Equal(t, "missing documents", app.FinalComments)
		require.NotNil(t, app.DecidedAt)
		assert.Equal(t, []uint{app.ID}, notifier.rejected)
	}
}

func TestRejectRequiresComments(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)
	app := submitEntryApplication(t, svc)

	_, err := svc.Review(context.Background(), adminActor, app.ID, &ReviewInput{Decision: "REJECT"})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "comments", vErr.Field)
}

func TestReviewTerminalApplicationConflicts(t *testing.T) {
	svc, _, _, _ := newApplicationFixture(t)
	app := submitEntryApplication(t, svc)
	ctx := context.Background()

	_, err := svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "REJECT", Comments: "incomplete"})
	require.NoError(t, err)

	_, err = svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE"})
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "REJECTED")
}

func TestConcurrentReviewLoserGetsConflict(t *testing.T) {
	appRepo := newFakeApplicationRepo()
	userRepo := newFakeUserRepo()
	userRepo.add(&models.User{ID: memberActor.UserID, PhoneNumber: "+254712345678", FirstName: "Mary", LastName: "Member", Role: models.RoleMember, IsActive: true})
	raced := &racingApplicationRepo{fakeApplicationRepo: appRepo}
	svc := NewApplicationService(raced, userRepo, nil)
	ctx := context.Background()

	app, err := svc.Submit(ctx, memberActor, &SubmitApplicationInput{
		ApplicationType: models.ApplicationTypeEntry,
		Reason:          "Joining the cooperative",
	})
	require.NoError(t, err)

	// A second reviewer wins between this reviewer's read and its guarded
	// write, so the status no longer matches and the write matches zero rows.
	raced.flipTo = models.ApplicationStatusStage2

	_, err = svc.Review(ctx, adminActor, app.ID, &ReviewInput{Decision: "APPROVE"})
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "concurrently")

	// The winner's state survives untouched.
	stored, err := appRepo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusStage2, stored.Status)
}

// racingApplicationRepo flips the stored status between GetByID and
// UpdateFromStatus, standing in for a concurrent reviewer.
type racingApplicationRepo struct {
	*fakeApplicationRepo
	flipTo string
}

func (r *racingApplicationRepo) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, err := r.fakeApplicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.flipTo != "" {
		r.apps[id].Status = r.flipTo
	}
	return app, nil
}

func TestStageDeterminationFromDivergentRecord(t *testing.T) {
	// A record whose status lags at PENDING routes to stage 1 regardless of
	// current_stage.
	app := &models.Application{Status: models.ApplicationStatusPending, CurrentStage: 1}
	assert.Equal(t, 0, currentReviewStage(app))

	app = &models.Application{Status: models.ApplicationStatusStage2, CurrentStage: 0}
	assert.Equal(t, 0, currentReviewStage(app))

	app = &models.Application{Status: models.ApplicationStatusStage2, CurrentStage: 1}
	assert.Equal(t, 1, currentReviewStage(app))

	app = &models.Application{Status: models.ApplicationStatusStage3, CurrentStage: 2}
	assert.Equal(t, 2, currentReviewStage(app))

	app = &models.Application{Status: models.ApplicationStatusStage3, CurrentStage: 5}
	assert.Equal(t, 2, currentReviewStage(app))
}

func TestMemberCannotReadOthersApplication(t *testing.T) {
	svc, _, userRepo, _ := newApplicationFixture(t)
	app := submitEntryApplication(t, svc)

	userRepo.add(&models.User{ID: 2, PhoneNumber: "+254700000002", FirstName: "Bob", LastName: "Other", Role: models.RoleMember, IsActive: true})
	other := domain.Actor{UserID: 2, Role: domain.RoleMember}

	_, err := svc.Get(context.Background(), other, app.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.Get(context.Background(), adminActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
}
