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

// MemberService handles member profiles and their owned collections
type MemberService struct {
	userRepo    repositories.UserRepository
	accountRepo repositories.AccountRepository
}

// NewMemberService creates a new member service
func NewMemberService(
	userRepo repositories.UserRepository,
	accountRepo repositories.AccountRepository,
) *MemberService {
	return &MemberService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
	}
}

// UpdateProfileInput represents profile update input. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Age           *int    `json:"age,omitempty" validate:"omitempty,min=18,max=120"`
	Gender        *string `json:"gender,omitempty"`
	MaritalStatus *string `json:"marital_status,omitempty"`
	NumberOfKids  *int    `json:"number_of_kids,omitempty" validate:"omitempty,min=0"`
	Profession    *string `json:"profession,omitempty"`
	SalaryRange   *string `json:"salary_range,omitempty"`
}

// SpouseInput represents spouse details input
type SpouseInput struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	Age         int    `json:"age" validate:"required,min=18"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email" validate:"omitempty,email"`
	Profession  string `json:"profession"`
	IDNumber    string `json:"id_number" validate:"required"`
}

// ChildInput represents child input
type ChildInput struct {
	FullName         string `json:"full_name" validate:"required,max=200"`
	Age              int    `json:"age" validate:"min=0,max=30"`
	Gender           string `json:"gender"`
	BirthCertificate string `json:"birth_certificate" validate:"required"`
}

// BeneficiaryInput represents beneficiary input
type BeneficiaryInput struct {
	FullName           string  `json:"full_name" validate:"required,max=200"`
	Age                int     `json:"age" validate:"min=0"`
	Relationship       string  `json:"relationship" validate:"required"`
	PhoneNumber        string  `json:"phone_number"`
	Email              string  `json:"email" validate:"omitempty,email"`
	Profession         string  `json:"profession"`
	SalaryRange        string  `json:"salary_range"`
	IdentityDocument   string  `json:"identity_document"`
	BirthCertificate   string  `json:"birth_certificate" validate:"required"`
	AdditionalDocument string  `json:"additional_document"`
	PercentageShare    float64 `json:"percentage_share" validate:"min=0,max=100"`
	IsPrimary          bool    `json:"is_primary"`
}

// MarkDeceasedInput records a beneficiary's death
type MarkDeceasedInput struct {
	DeathCertificate       string     `json:"death_certificate" validate:"required"`
	DeathCertificateNumber string     `json:"death_certificate_number" validate:"required"`
	DateOfDeath            *time.Time `json:"date_of_death" validate:"required"`
}

// NextOfKinInput represents next of kin input
type NextOfKinInput struct {
	FullName     string `json:"full_name" validate:"required,max=200"`
	Relationship string `json:"relationship" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address"`
	IDNumber     string `json:"id_number"`
}

// ============================================================
// Profile
// ============================================================

// GetProfile returns a member's profile
func (s *MemberService) GetProfile(ctx context.Context, actor domain.Actor, memberID uint) (*models.User, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates a member's own profile fields
func (s *MemberService) UpdateProfile(ctx context.Context, actor domain.Actor, memberID uint, input *UpdateProfileInput) (*models.User, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Age != nil {
		user.Age = input.Age
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.MaritalStatus != nil {
		user.MaritalStatus = *input.MaritalStatus
	}
	if input.NumberOfKids != nil {
		user.NumberOfKids = *input.NumberOfKids
	}
	if input.Profession != nil {
		user.Profession = *input.Profession
	}
	if input.SalaryRange != nil {
		user.SalaryRange = *input.SalaryRange
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ============================================================
// Admin: user management
// ============================================================

// ListUsers returns a page of users (admin only)
func (s *MemberService) ListUsers(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.userRepo.List(ctx, offset, limit)
}

// SetUserActive activates or deactivates a user account (admin only).
// Deactivated users cannot log in; their data is retained.
func (s *MemberService) SetUserActive(ctx context.Context, actor domain.Actor, userID uint, active bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, err
	}

	if user.ID == actor.UserID && !active {
		return nil, domain.Conflictf("cannot deactivate your own account")
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logrus.Infof("✅ User %d active=%t by admin %d", user.ID, active, actor.UserID)
	return user, nil
}

// SetUserRole changes a user's role (admin only)
func (s *MemberService) SetUserRole(ctx context.Context, actor domain.Actor, userID uint, role string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, domain.Validationf("role", "role must be %s or %s", models.RoleAdmin, models.RoleMember)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user")
		}
		return nil, err
	}

	if user.ID == actor.UserID && role != models.RoleAdmin {
		return nil, domain.Conflictf("cannot remove your own admin role")
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logrus.Infof("✅ User %d role set to %s by admin %d", user.ID, role, actor.UserID)
	return user, nil
}

// DeleteUser soft-deletes a user account (admin only)
func (s *MemberService) DeleteUser(ctx context.Context, actor domain.Actor, userID uint) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if userID == actor.UserID {
		return domain.Conflictf("cannot delete your own account")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("user")
		}
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

// ============================================================
// Spouse
// ============================================================

// GetSpouse returns a member's spouse details
func (s *MemberService) GetSpouse(ctx context.Context, actor domain.Actor, memberID uint) (*models.SpouseDetails, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	spouse, err := s.accountRepo.GetSpouse(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("spouse details")
		}
		return nil, err
	}
	return spouse, nil
}

// UpsertSpouse creates or replaces a member's spouse details
func (s *MemberService) UpsertSpouse(ctx context.Context, actor domain.Actor, memberID uint, input *SpouseInput) (*models.SpouseDetails, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	spouse, err := s.accountRepo.GetSpouse(ctx, memberID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		spouse = &models.SpouseDetails{UserID: memberID}
	}

	spouse.FullName = input.FullName
	spouse.Age = input.Age
	spouse.PhoneNumber = input.PhoneNumber
	spouse.Email = input.Email
	spouse.Profession = input.Profession
	spouse.IDNumber = input.IDNumber

	if err := s.accountRepo.SaveSpouse(ctx, spouse); err != nil {
		return nil, err
	}
	return spouse, nil
}

// ============================================================
// Children
// ============================================================

// ListChildren returns a member's children
func (s *MemberService) ListChildren(ctx context.Context, actor domain.Actor, memberID uint) ([]*models.Child, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}
	return s.accountRepo.ListChildren(ctx, memberID)
}

// AddChild adds a child record to a member
func (s *MemberService) AddChild(ctx context.Context, actor domain.Actor, memberID uint, input *ChildInput) (*models.Child, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}
	if input.BirthCertificate == "" {
		return nil, domain.Validationf("birth_certificate", "birth certificate is required")
	}

	child := &models.Child{
		UserID:           memberID,
		FullName:         input.FullName,
		Age:              input.Age,
		Gender:           input.Gender,
		BirthCertificate: input.BirthCertificate,
	}

	if err := s.accountRepo.CreateChild(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// UpdateChild updates a child record
func (s *MemberService) UpdateChild(ctx context.Context, actor domain.Actor, childID uint, input *ChildInput) (*models.Child, error) {
	child, err := s.accountRepo.GetChild(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("child")
		}
		return nil, err
	}
	if !actor.CanAccessMember(child.UserID) {
		return nil, domain.ErrForbidden
	}

	child.FullName = input.FullName
	child.Age = input.Age
	child.Gender = input.Gender
	if input.BirthCertificate != "" {
		child.BirthCertificate = input.BirthCertificate
	}

	if err := s.accountRepo.SaveChild(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// RemoveChild deletes a child record
func (s *MemberService) RemoveChild(ctx context.Context, actor domain.Actor, childID uint) error {
	child, err := s.accountRepo.GetChild(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("child")
		}
		return err
	}
	if !actor.CanAccessMember(child.UserID) {
		return domain.ErrForbidden
	}
	return s.accountRepo.DeleteChild(ctx, childID)
}

// ============================================================
// Beneficiaries
// ============================================================

// ListBeneficiaries returns all of a member's beneficiaries
func (s *MemberService) ListBeneficiaries(ctx context.Context, actor domain.Actor, memberID uint) ([]*models.Beneficiary, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}
	return s.accountRepo.ListBeneficiaries(ctx, memberID)
}

// AddBeneficiary adds a beneficiary. The sum of percentage shares over the
// member's ACTIVE beneficiaries must stay within 100.
func (s *MemberService) AddBeneficiary(ctx context.Context, actor domain.Actor, memberID uint, input *BeneficiaryInput) (*models.Beneficiary, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}
	if input.BirthCertificate == "" {
		return nil, domain.Validationf("birth_certificate", "birth certificate is required")
	}
	if input.PercentageShare < 0 || input.PercentageShare > 100 {
		return nil, domain.Validationf("percentage_share", "must be between 0 and 100")
	}

	if err := s.checkShareBudget(ctx, memberID, 0, input.PercentageShare); err != nil {
		return nil, err
	}

	b := &models.Beneficiary{
		UserID:             memberID,
		FullName:           input.FullName,
		Age:                input.Age,
		Relationship:       input.Relationship,
		PhoneNumber:        input.PhoneNumber,
		Email:              input.Email,
		Profession:         input.Profession,
		SalaryRange:        input.SalaryRange,
		IdentityDocument:   input.IdentityDocument,
		BirthCertificate:   input.BirthCertificate,
		AdditionalDocument: input.AdditionalDocument,
		Status:             models.BeneficiaryStatusActive,
		PercentageShare:    input.PercentageShare,
		IsPrimary:          input.IsPrimary,
	}

	if err := s.accountRepo.CreateBeneficiary(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBeneficiary updates an ACTIVE beneficiary
func (s *MemberService) UpdateBeneficiary(ctx context.Context, actor domain.Actor, beneficiaryID uint, input *BeneficiaryInput) (*models.Beneficiary, error) {
	b, err := s.accountRepo.GetBeneficiary(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("beneficiary")
		}
		return nil, err
	}
	if !actor.CanAccessMember(b.UserID) {
		return nil, domain.ErrForbidden
	}
	if b.Status != models.BeneficiaryStatusActive {
		return nil, domain.Conflictf("beneficiary is %s and cannot be updated", b.Status)
	}
	if input.PercentageShare < 0 || input.PercentageShare > 100 {
		return nil, domain.Validationf("percentage_share", "must be between 0 and 100")
	}

	if err := s.checkShareBudget(ctx, b.UserID, b.ID, input.PercentageShare); err != nil {
		return nil, err
	}

	b.FullName = input.FullName
	b.Age = input.Age
	b.Relationship = input.Relationship
	b.PhoneNumber = input.PhoneNumber
	b.Email = input.Email
	b.Profession = input.Profession
	b.SalaryRange = input.SalaryRange
	if input.IdentityDocument != "" {
		b.IdentityDocument = input.IdentityDocument
	}
	if input.BirthCertificate != "" {
		b.BirthCertificate = input.BirthCertificate
	}
	if input.AdditionalDocument != "" {
		b.AdditionalDocument = input.AdditionalDocument
	}
	b.PercentageShare = input.PercentageShare
	b.IsPrimary = input.IsPrimary

	if err := s.accountRepo.SaveBeneficiary(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MarkBeneficiaryDeceased transitions an ACTIVE beneficiary to DECEASED.
// A death certificate is mandatory.
func (s *MemberService) MarkBeneficiaryDeceased(ctx context.Context, actor domain.Actor, beneficiaryID uint, input *MarkDeceasedInput) (*models.Beneficiary, error) {
	b, err := s.accountRepo.GetBeneficiary(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("beneficiary")
		}
		return nil, err
	}
	if !actor.CanAccessMember(b.UserID) {
		return nil, domain.ErrForbidden
	}
	if b.Status != models.BeneficiaryStatusActive {
		return nil, domain.Conflictf("beneficiary is already %s", b.Status)
	}
	if input.DeathCertificate == "" || input.DeathCertificateNumber == "" {
		return nil, domain.Validationf("death_certificate", "death certificate is required")
	}

	b.Status = models.BeneficiaryStatusDeceased
	b.DeathCertificate = input.DeathCertificate
	b.DeathCertificateNumber = input.DeathCertificateNumber
	b.DateOfDeath = input.DateOfDeath

	if err := s.accountRepo.SaveBeneficiary(ctx, b); err != nil {
		return nil, err
	}

	logrus.Infof("📋 Beneficiary %d marked deceased for member %d", b.ID, b.UserID)
	return b, nil
}

// ReplaceBeneficiary marks a DECEASED beneficiary as REPLACED and creates the
// replacement as a new ACTIVE beneficiary inheriting the freed share.
func (s *MemberService) ReplaceBeneficiary(ctx context.Context, actor domain.Actor, beneficiaryID uint, input *BeneficiaryInput) (*models.Beneficiary, error) {
	old, err := s.accountRepo.GetBeneficiary(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("beneficiary")
		}
		return nil, err
	}
	if !actor.CanAccessMember(old.UserID) {
		return nil, domain.ErrForbidden
	}
	if old.Status != models.BeneficiaryStatusDeceased {
		return nil, domain.Conflictf("only a DECEASED beneficiary can be replaced")
	}

	replacement, err := s.AddBeneficiary(ctx, actor, old.UserID, input)
	if err != nil {
		return nil, err
	}

	old.Status = models.BeneficiaryStatusReplaced
	if err := s.accountRepo.SaveBeneficiary(ctx, old); err != nil {
		return nil, err
	}

	return replacement, nil
}

// RemoveBeneficiary deletes a beneficiary record
func (s *MemberService) RemoveBeneficiary(ctx context.Context, actor domain.Actor, beneficiaryID uint) error {
	b, err := s.accountRepo.GetBeneficiary(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("beneficiary")
		}
		return err
	}
	if !actor.CanAccessMember(b.UserID) {
		return domain.ErrForbidden
	}
	return s.accountRepo.DeleteBeneficiary(ctx, beneficiaryID)
}

// checkShareBudget verifies that adding share (excluding beneficiary
// excludeID) keeps the member's ACTIVE total within 100.
func (s *MemberService) checkShareBudget(ctx context.Context, memberID, excludeID uint, share float64) error {
	active, err := s.accountRepo.ListActiveBeneficiaries(ctx, memberID)
	if err != nil {
		return err
	}

	total := share
	for _, b := range active {
		if b.ID == excludeID {
			continue
		}
		total += b.PercentageShare
	}

	if total > 100 {
		return domain.Validationf("percentage_share",
			"total share for active beneficiaries would be %.2f%%, exceeding 100%%", total)
	}
	return nil
}

// ============================================================
// Next of kin
// ============================================================

// GetNextOfKin returns a member's next of kin
func (s *MemberService) GetNextOfKin(ctx context.Context, actor domain.Actor, memberID uint) (*models.NextOfKin, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	nok, err := s.accountRepo.GetNextOfKin(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("next of kin")
		}
		return nil, err
	}
	return nok, nil
}

// UpsertNextOfKin creates or replaces a member's next of kin
func (s *MemberService) UpsertNextOfKin(ctx context.Context, actor domain.Actor, memberID uint, input *NextOfKinInput) (*models.NextOfKin, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}

	nok, err := s.accountRepo.GetNextOfKin(ctx, memberID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		nok = &models.NextOfKin{UserID: memberID}
	}

	nok.FullName = input.FullName
	nok.Relationship = input.Relationship
	nok.PhoneNumber = input.PhoneNumber
	nok.Email = input.Email
	nok.Address = input.Address
	nok.IDNumber = input.IDNumber

	if err := s.accountRepo.SaveNextOfKin(ctx, nok); err != nil {
		return nil, err
	}
	return nok, nil
}
