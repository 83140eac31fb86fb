package services

import (
	"context"
	"testing"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemberFixture(t *testing.T) (*MemberService, *fakeUserRepo, *fakeAccountRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	userRepo.add(&models.User{
		ID:          memberActor.UserID,
		PhoneNumber: "+254712345678",
		FirstName:   "Mary",
		LastName:    "Member",
		Role:        models.RoleMember,
		IsActive:    true,
	})
	userRepo.add(&models.User{
		ID:          adminActor.UserID,
		PhoneNumber: "+254700000099",
		FirstName:   "Alice",
		LastName:    "Admin",
		Role:        models.RoleAdmin,
		IsActive:    true,
	})
	accountRepo := newFakeAccountRepo()
	return NewMemberService(userRepo, accountRepo), userRepo, accountRepo
}

func beneficiaryInput(name string, share float64) *BeneficiaryInput {
	return &BeneficiaryInput{
		FullName:         name,
		Age:              25,
		Relationship:     "SIBLING",
		BirthCertificate: "doc-handle",
		PercentageShare:  share,
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	profession := "Teacher"
	user, err := svc.UpdateProfile(ctx, memberActor, memberActor.UserID, &UpdateProfileInput{
		Profession: &profession,
	})
	require.NoError(t, err)
	assert.Equal(t, "Teacher", user.Profession)
	// Untouched fields survive.
	assert.Equal(t, "Mary", user.FirstName)
	assert.Equal(t, "+254712345678", user.PhoneNumber)
}

func TestMemberCannotTouchOtherProfiles(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, memberActor, adminActor.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.GetProfile(ctx, adminActor, memberActor.UserID)
	assert.NoError(t, err)
}

func TestSetUserActiveBlocksSelfDeactivation(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	_, err := svc.SetUserActive(ctx, adminActor, adminActor.UserID, false)
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)

	user, err := svc.SetUserActive(ctx, adminActor, memberActor.UserID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestSetUserRole(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	user, err := svc.SetUserRole(ctx, adminActor, memberActor.UserID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = svc.SetUserRole(ctx, adminActor, memberActor.UserID, "SUPERUSER")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	// Admins cannot strip their own admin role
	_, err = svc.SetUserRole(ctx, adminActor, adminActor.UserID, models.RoleMember)
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)

	_, err = svc.SetUserRole(ctx, memberActor, memberActor.UserID, models.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteUserBlocksSelfDelete(t *testing.T) {
	svc, _, _ := newMemberFixture(t)

	err := svc.DeleteUser(context.Background(), adminActor, adminActor.UserID)
	var cErr *domain.ConflictError
	assert.ErrorAs(t, err, &cErr)
}

func TestAddChildRequiresBirthCertificate(t *testing.T) {
	svc, _, _ := newMemberFixture(t)

	_, err := svc.AddChild(context.Background(), memberActor, memberActor.UserID, &ChildInput{
		FullName: "Junior Member",
		Age:      4,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "birth_certificate", vErr.Field)
}

func TestBeneficiaryShareBudget(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	_, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("First", 60))
	require.NoError(t, err)
	_, err = svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("Second", 40))
	require.NoError(t, err)

	// 60 + 40 + 1 > 100
	_, err = svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("Third", 1))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "percentage_share", vErr.Field)
	assert.Contains(t, vErr.Message, "101.00")
}

func TestBeneficiaryShareBudgetExcludesSelfOnUpdate(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("Only", 60))
	require.NoError(t, err)

	// Raising the same beneficiary to 100 is fine: its old share leaves the
	// budget before the new one enters.
	updated, err := svc.UpdateBeneficiary(ctx, memberActor, b.ID, beneficiaryInput("Only", 100))
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.PercentageShare)
}

func TestBeneficiaryShareBudgetIgnoresDeceased(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("First", 70))
	require.NoError(t, err)

	dod := time.Now()
	_, err = svc.MarkBeneficiaryDeceased(ctx, memberActor, b.ID, &MarkDeceasedInput{
		DeathCertificate:       "cert-handle",
		DeathCertificateNumber: "DC-123",
		DateOfDeath:            &dod,
	})
	require.NoError(t, err)

	// The deceased share no longer counts against the budget.
	_, err = svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("Second", 80))
	assert.NoError(t, err)
}

func TestMarkDeceasedRequiresCertificate(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("First", 50))
	require.NoError(t, err)

	dod := time.Now()
	_, err = svc.MarkBeneficiaryDeceased(ctx, memberActor, b.ID, &MarkDeceasedInput{DateOfDeath: &dod})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "death_certificate", vErr.Field)
}

func TestReplaceBeneficiaryLifecycle(t *testing.T) {
	svc, _, accountRepo := newMemberFixture(t)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("Original", 50))
	require.NoError(t, err)

	// Replacing an ACTIVE beneficiary is refused.
	_, err = svc.ReplaceBeneficiary(ctx, memberActor, b.ID, beneficiaryInput("Replacement", 50))
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)

	dod := time.Now()
	_, err = svc.MarkBeneficiaryDeceased(ctx, memberActor, b.ID, &MarkDeceasedInput{
		DeathCertificate:       "cert-handle",
		DeathCertificateNumber: "DC-123",
		DateOfDeath:            &dod,
	})
	require.NoError(t, err)

	replacement, err := svc.ReplaceBeneficiary(ctx, memberActor, b.ID, beneficiaryInput("Replacement", 50))
	require.NoError(t, err)
	assert.Equal(t, models.BeneficiaryStatusActive, replacement.Status)
	assert.Equal(t, "Replacement", replacement.FullName)

	old, err := accountRepo.GetBeneficiary(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BeneficiaryStatusReplaced, old.Status)
}

func TestUpdateDeceasedBeneficiaryConflicts(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	b, err := svc.AddBeneficiary(ctx, memberActor, memberActor.UserID, beneficiaryInput("First", 50))
	require.NoError(t, err)

	dod := time.Now()
	_, err = svc.MarkBeneficiaryDeceased(ctx, memberActor, b.ID, &MarkDeceasedInput{
		DeathCertificate:       "cert-handle",
		DeathCertificateNumber: "DC-123",
		DateOfDeath:            &dod,
	})
	require.NoError(t, err)

	_, err = svc.UpdateBeneficiary(ctx, memberActor, b.ID, beneficiaryInput("First", 40))
	var cErr *domain.ConflictError
	assert.ErrorAs(t, err, &cErr)
}

func TestUpsertNextOfKin(t *testing.T) {
	svc, _, _ := newMemberFixture(t)
	ctx := context.Background()

	nok, err := svc.UpsertNextOfKin(ctx, memberActor, memberActor.UserID, &NextOfKinInput{
		FullName:     "Nancy Kin",
		Relationship: "SISTER",
		PhoneNumber:  "+254700000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nancy Kin", nok.FullName)

	// Second upsert replaces in place.
	nok2, err := svc.UpsertNextOfKin(ctx, memberActor, memberActor.UserID, &NextOfKinInput{
		FullName:     "Norman Kin",
		Relationship: "BROTHER",
		PhoneNumber:  "+254700000002",
	})
	require.NoError(t, err)
	assert.Equal(t, nok.ID, nok2.ID)
	assert.Equal(t, "Norman Kin", nok2.FullName)
}
