package config

import (
	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	logrus.Info("🌱 Running database seeders...")

	if err := s.seedContributionTypes(); err != nil {
		return err
	}
	if err := s.seedDocumentCategories(); err != nil {
		return err
	}
	if err := s.seedNotificationTemplates(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		logrus.Warnf("⚠️ Admin seeder skipped: %v", err)
	}

	logrus.Info("✅ Database seeding completed")
	return nil
}

// seedContributionTypes seeds the contribution products members pay into
func (s *Seeder) seedContributionTypes() error {
	types := []models.ContributionType{
		{
			Name:        "SACCO",
			Description: "Regular SACCO savings contributions",
			IsActive:    true,
		},
		{
			Name:        "MMF",
			Description: "Money Market Fund investment contributions",
			IsActive:    true,
		},
	}

	for _, ct := range types {
		if err := s.db.Where(models.ContributionType{Name: ct.Name}).
			Attrs(ct).FirstOrCreate(&models.ContributionType{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedDocumentCategories seeds the fixed set of document categories
func (s *Seeder) seedDocumentCategories() error {
	categories := []models.DocumentCategory{
		{Name: models.DocumentCategoryIdentity, Description: "National ID, passport", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryBeneficiary, Description: "Beneficiary nomination forms", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryBirth, Description: "Birth certificates", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryDeath, Description: "Death certificates", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryFinancial, Description: "Bank statements, payslips", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryMedical, Description: "Medical reports", RequiresVerification: true, IsActive: true},
		{Name: models.DocumentCategoryAdditional, Description: "Any other supporting documents", RequiresVerification: false, IsActive: true},
	}

	for _, cat := range categories {
		if err := s.db.Where(models.DocumentCategory{Name: cat.Name}).
			Attrs(cat).FirstOrCreate(&models.DocumentCategory{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedNotificationTemplates seeds the default SMS templates
func (s *Seeder) seedNotificationTemplates() error {
	templates := []models.NotificationTemplate{
		{
			Name:         models.TemplateContributionVerified,
			Description:  "Sent when a contribution is verified",
			TemplateText: "Dear {first_name}, your contribution of KES {amount} for {contribution_type} has been verified. Transaction: {transaction_code}. Thank you!",
			IsActive:     true,
		},
		{
			Name:         models.TemplateContributionRejected,
			Description:  "Sent when a contribution is rejected",
			TemplateText: "Dear {first_name}, your contribution of KES {amount} for {contribution_type} has been rejected. Reason: {reason}. Please contact admin for more details.",
			IsActive:     true,
		},
		{
			Name:         models.TemplateApplicationApproved,
			Description:  "Sent when a membership application is approved",
			TemplateText: "Dear {first_name}, your {application_type} application has been approved. Welcome to the SACCO!",
			IsActive:     true,
		},
		{
			Name:         models.TemplateApplicationRejected,
			Description:  "Sent when a membership application is rejected",
			TemplateText: "Dear {first_name}, your {application_type} application has been rejected. Reason: {reason}. Please contact admin for more details.",
			IsActive:     true,
		},
	}

	for _, t := range templates {
		if err := s.db.Where(models.NotificationTemplate{Name: t.Name}).
			Attrs(t).FirstOrCreate(&models.NotificationTemplate{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedAdminUser seeds the bootstrap admin user.
// Requires ADMIN_PASSWORD to be set; refuses to seed with an empty password.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	if AppConfig == nil || AppConfig.Admin.Password == "" {
		logrus.Warn("⚠️ Skipping admin seed: ADMIN_PASSWORD not set")
		return nil
	}

	hashedPassword, err := password.Hash(AppConfig.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		PhoneNumber: AppConfig.Admin.PhoneNumber,
		FirstName:   "System",
		LastName:    "Administrator",
		Password:    hashedPassword,
		Role:        models.RoleAdmin,
		IsActive:    true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	logrus.Infof("✅ Admin user created: %s", admin.PhoneNumber)
	return nil
}
