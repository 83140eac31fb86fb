package services

import (
	"context"
	"testing"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const saccoTypeID = 1

func newContributionFixture(t *testing.T) (*ContributionService, *fakeLedgerRepo, *spyNotifier) {
	t.Helper()
	ledger := newFakeLedgerRepo()
	ledger.addType(&models.ContributionType{ID: saccoTypeID, Name: "SACCO", IsActive: true})
	ledger.addType(&models.ContributionType{ID: 2, Name: "MMF", IsActive: false})
	notifier := &spyNotifier{}
	return NewContributionService(ledger, newFakeUserRepo(), notifier), ledger, notifier
}

func submitContribution(t *testing.T, svc *ContributionService, actor domain.Actor, amount float64, code string) *models.Contribution {
	t.Helper()
	c, err := svc.Submit(context.Background(), actor, &SubmitContributionInput{
		ContributionTypeID:   saccoTypeID,
		Amount:               amount,
		MpesaTransactionCode: code,
	})
	require.NoError(t, err)
	return c
}

func TestSubmitContribution(t *testing.T) {
	svc, _, _ := newContributionFixture(t)

	c := submitContribution(t, svc, memberActor, 2500, "QAB12XY9ZK")

	assert.Equal(t, models.ContributionStatusPending, c.Status)
	assert.Equal(t, memberActor.UserID, c.MemberID)
	assert.Equal(t, 2500.0, c.Amount)
}

func TestSubmitContributionValidation(t *testing.T) {
	svc, _, _ := newContributionFixture(t)
	ctx := context.Background()

	var vErr *domain.ValidationError

	_, err := svc.Submit(ctx, memberActor, &SubmitContributionInput{
		ContributionTypeID: saccoTypeID, Amount: 0, MpesaTransactionCode: "QAB12XY9ZK",
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)

	_, err = svc.Submit(ctx, memberActor, &SubmitContributionInput{
		ContributionTypeID: saccoTypeID, Amount: 100,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "mpesa_transaction_code", vErr.Field)

	// Inactive contribution type
	_, err = svc.Submit(ctx, memberActor, &SubmitContributionInput{
		ContributionTypeID: 2, Amount: 100, MpesaTransactionCode: "QAB12XY9ZK",
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "contribution_type_id", vErr.Field)
}

func TestDuplicateTransactionCodeConflicts(t *testing.T) {
	svc, _, _ := newContributionFixture(t)
	submitContribution(t, svc, memberActor, 1000, "QAB12XY9ZK")

	_, err := svc.Submit(context.Background(), memberActor, &SubmitContributionInput{
		ContributionTypeID:   saccoTypeID,
		Amount:               500,
		MpesaTransactionCode: "QAB12XY9ZK",
	})
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "QAB12XY9ZK")
}

// duplicatingLedgerRepo simulates a concurrent submission landing between the
// existence check and the insert: the create hits the unique index.
type duplicatingLedgerRepo struct {
	*fakeLedgerRepo
}

func (r *duplicatingLedgerRepo) CreateContribution(ctx context.Context, c *models.Contribution) error {
	return gorm.ErrDuplicatedKey
}

func TestConcurrentDuplicateCodeConflicts(t *testing.T) {
	ledger := newFakeLedgerRepo()
	ledger.addType(&models.ContributionType{ID: saccoTypeID, Name: "SACCO", IsActive: true})
	svc := NewContributionService(&duplicatingLedgerRepo{ledger}, newFakeUserRepo(), &spyNotifier{})

	_, err := svc.Submit(context.Background(), memberActor, &SubmitContributionInput{
		ContributionTypeID:   saccoTypeID,
		Amount:               500,
		MpesaTransactionCode: "QAB12XY9ZK",
	})
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "QAB12XY9ZK")
}

func TestVerifyContributionUpdatesBalanceAndSummary(t *testing.T) {
	svc, ledger, notifier := newContributionFixture(t)
	ctx := context.Background()
	c := submitContribution(t, svc, memberActor, 2500, "QAB12XY9ZK")

	verified, err := svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{Status: models.ContributionStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionStatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedByID)
	assert.Equal(t, adminActor.UserID, *verified.VerifiedByID)

	balance, err := ledger.GetOrCreateBalance(ctx, memberActor.UserID, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, balance.TotalBalance)
	require.NotNil(t, balance.LastContributionDate)
	// Recency comes from submission, not verification.
	assert.True(t, balance.LastContributionDate.Equal(c.SubmittedAt))

	summary, err := ledger.GetOrCreateSummary(ctx, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, summary.TotalAmount)
	assert.Equal(t, 1, summary.TotalContributions)
	assert.Equal(t, 1, summary.ActiveMembers)

	assert.Equal(t, []uint{c.ID}, notifier.verified)
}

func TestVerifyAccumulatesAcrossContributions(t *testing.T) {
	svc, ledger, _ := newContributionFixture(t)
	ctx := context.Background()

	c1 := submitContribution(t, svc, memberActor, 1000, "QAB12XY9ZK")
	c2 := submitContribution(t, svc, memberActor, 1500, "QCD34WV8YJ")
	other := domain.Actor{UserID: 7, Role: domain.RoleMember}
	c3 := submitContribution(t, svc, other, 500, "QEF56UT7XH")

	for _, c := range []*models.Contribution{c1, c2, c3} {
		_, err := svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{Status: models.ContributionStatusVerified})
		require.NoError(t, err)
	}

	balance, err := ledger.GetOrCreateBalance(ctx, memberActor.UserID, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, balance.TotalBalance)

	summary, err := ledger.GetOrCreateSummary(ctx, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, summary.TotalAmount)
	assert.Equal(t, 3, summary.TotalContributions)
	assert.Equal(t, 2, summary.ActiveMembers)
}

func TestVerifyTwiceConflictsWithoutDoubleCount(t *testing.T) {
	svc, ledger, _ := newContributionFixture(t)
	ctx := context.Background()
	c := submitContribution(t, svc, memberActor, 2000, "QAB12XY9ZK")

	_, err := svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{Status: models.ContributionStatusVerified})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{Status: models.ContributionStatusVerified})
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "VERIFIED")

	balance, err := ledger.GetOrCreateBalance(ctx, memberActor.UserID, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, balance.TotalBalance)

	summary, err := ledger.GetOrCreateSummary(ctx, saccoTypeID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalContributions)
}

func TestConcurrentVerifyLoserRollsBack(t *testing.T) {
	ledger := newFakeLedgerRepo()
	ledger.addType(&models.ContributionType{ID: saccoTypeID, Name: "SACCO", IsActive: true})
	svc := NewContributionService(ledger, newFakeUserRepo(), nil)
	ctx := context.Background()

	c := submitContribution(t, svc, memberActor, 2000, "QAB12XY9ZK")

	// The other verifier flips the status after this verifier's read but
	// before its compare-and-set.
	stored := ledger.contributions[c.ID]
	readCopy := *stored
	now := time.Now()
	stored.Status = models.ContributionStatusVerified
	stored.VerifiedAt = &now

	// Drive the losing path directly through approve's transaction.
	_, err := svc.approve(ctx, adminActor, &readCopy)
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, cErr.Message, "concurrently")

	// No balance or summary side effects leaked.
	balances, err := ledger.ListBalancesByMember(ctx, memberActor.UserID)
	require.NoError(t, err)
	for _, b := range balances {
		assert.Zero(t, b.TotalBalance)
	}
}

func TestRejectContribution(t *testing.T) {
	svc, ledger, notifier := newContributionFixture(t)
	ctx := context.Background()
	c := submitContribution(t, svc, memberActor, 2000, "QAB12XY9ZK")

	rejected, err := svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{
		Status:          models.ContributionStatusRejected,
		RejectionReason: "amount does not match the M-Pesa statement",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionStatusRejected, rejected.Status)
	assert.Equal(t, "amount does not match the M-Pesa statement", rejected.RejectionReason)
	assert.Equal(t, []uint{c.ID}, notifier.rejectedPayments)

	// No balance was touched.
	balances, err := ledger.ListBalancesByMember(ctx, memberActor.UserID)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _ := newContributionFixture(t)
	c := submitContribution(t, svc, memberActor, 2000, "QAB12XY9ZK")

	_, err := svc.Verify(context.Background(), adminActor, c.ID, &VerifyContributionInput{
		Status: models.ContributionStatusRejected,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rejection_reason", vErr.Field)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	svc, _, _ := newContributionFixture(t)
	c := submitContribution(t, svc, memberActor, 2000, "QAB12XY9ZK")

	_, err := svc.Verify(context.Background(), memberActor, c.ID, &VerifyContributionInput{
		Status: models.ContributionStatusVerified,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMyBalances(t *testing.T) {
	svc, _, _ := newContributionFixture(t)
	ctx := context.Background()
	c := submitContribution(t, svc, memberActor, 3200, "QAB12XY9ZK")

	_, err := svc.Verify(ctx, adminActor, c.ID, &VerifyContributionInput{Status: models.ContributionStatusVerified})
	require.NoError(t, err)

	balances, err := svc.MyBalances(ctx, memberActor)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "SACCO", balances[0].ContributionType)
	assert.Equal(t, 3200.0, balances[0].TotalBalance)
}
