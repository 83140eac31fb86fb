package services

import (
	"context"
	"errors"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/adapters/persistence/repositories"
	"sacco-hub/internal/core/domain"
	"sacco-hub/internal/pkg/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaxDocumentSize is the upload cap for a single document.
const MaxDocumentSize = 10 << 20 // 10 MiB

// DocumentService handles document upload, verification and versioning
type DocumentService struct {
	docRepo repositories.DocumentRepository
	store   storage.Store
}

// NewDocumentService creates a new document service
func NewDocumentService(docRepo repositories.DocumentRepository, store storage.Store) *DocumentService {
	return &DocumentService{
		docRepo: docRepo,
		store:   store,
	}
}

// UploadDocumentInput represents a document upload
type UploadDocumentInput struct {
	CategoryID     uint       `json:"category_id" validate:"required"`
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description"`
	DocumentNumber string     `json:"document_number"`
	IssueDate      *time.Time `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	ContentType    string     `json:"-"`
	Data           []byte     `json:"-"`
}

// VerifyDocumentInput represents a verifier decision on a document
type VerifyDocumentInput struct {
	Status          string `json:"status" validate:"required,oneof=VERIFIED REJECTED"`
	RejectionReason string `json:"rejection_reason"`
}

// Upload stores the file and creates a PENDING document record. Files over
// 10 MiB are rejected before anything is written.
func (s *DocumentService) Upload(ctx context.Context, actor domain.Actor, memberID uint, input *UploadDocumentInput) (*models.Document, error) {
	if !actor.CanAccessMember(memberID) {
		return nil, domain.ErrForbidden
	}
	if len(input.Data) == 0 {
		return nil, domain.Validationf("file", "file is required")
	}
	if len(input.Data) > MaxDocumentSize {
		return nil, domain.Validationf("file", "file size %d exceeds the 10 MiB limit", len(input.Data))
	}
	if input.Title == "" {
		return nil, domain.Validationf("title", "title is required")
	}

	category, err := s.docRepo.GetCategory(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("document category")
		}
		return nil, err
	}

	handle, err := s.store.Store(input.Data, input.ContentType)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "object store", Err: err}
	}

	doc := &models.Document{
		UserID:         memberID,
		CategoryID:     category.ID,
		Title:          input.Title,
		Description:    input.Description,
		FileHandle:     handle,
		FileSize:       int64(len(input.Data)),
		FileType:       input.ContentType,
		DocumentNumber: input.DocumentNumber,
		IssueDate:      input.IssueDate,
		ExpiryDate:     input.ExpiryDate,
		Status:         models.DocumentStatusPending,
		Version:        1,
	}

	// Categories that need no verification are usable immediately
	if !category.RequiresVerification {
		doc.Status = models.DocumentStatusVerified
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	logrus.Infof("📄 Document %d uploaded by member %d (%s, %d bytes)",
		doc.ID, memberID, category.Name, doc.FileSize)
	return doc, nil
}

// Get returns a single document. Members see only their own.
func (s *DocumentService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("document")
		}
		return nil, err
	}
	if !actor.CanAccessMember(doc.UserID) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// ResolveFile returns the stored file location for a document
func (s *DocumentService) ResolveFile(ctx context.Context, actor domain.Actor, id uint) (string, error) {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	path, err := s.store.Resolve(doc.FileHandle)
	if err != nil {
		return "", &domain.ExternalServiceError{Service: "object store", Err: err}
	}
	return path, nil
}

// ListMine returns the calling member's documents
func (s *DocumentService) ListMine(ctx context.Context, actor domain.Actor) ([]*models.Document, error) {
	return s.docRepo.ListByUser(ctx, actor.UserID)
}

// List returns a page of all documents (admin only)
func (s *DocumentService) List(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.Document, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.docRepo.List(ctx, offset, limit)
}

// ListPending returns all documents awaiting verification (admin only)
func (s *DocumentService) ListPending(ctx context.Context, actor domain.Actor) ([]*models.Document, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.docRepo.ListPending(ctx)
}

// Verify applies a verifier decision to a PENDING document. The update is
// status-guarded so concurrent verifiers cannot both win.
func (s *DocumentService) Verify(ctx context.Context, actor domain.Actor, id uint, input *VerifyDocumentInput) (*models.Document, error) {
	if !actor.CanReview() {
		return nil, domain.ErrForbidden
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("document")
		}
		return nil, err
	}

	if doc.Status != models.DocumentStatusPending {
		return nil, domain.Conflictf("document is already %s", doc.Status)
	}

	switch input.Status {
	case models.DocumentStatusVerified:
	case models.DocumentStatusRejected:
		if input.RejectionReason == "" {
			return nil, domain.Validationf("rejection_reason", "rejection reason is required")
		}
	default:
		return nil, domain.Validationf("status", "must be VERIFIED or REJECTED")
	}

	now := time.Now()
	fromStatus := doc.Status
	doc.Status = input.Status
	doc.VerifiedByID = &actor.UserID
	doc.VerifiedAt = &now
	doc.RejectionReason = input.RejectionReason

	updated, err := s.docRepo.UpdateFromStatus(ctx, doc, fromStatus)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.Conflictf("document was processed concurrently")
	}

	logrus.Infof("📄 Document %d %s by admin %d", doc.ID, doc.Status, actor.UserID)
	return doc, nil
}

// Replace uploads a new version of an existing document. The old record is
// linked forward and keeps its history; the new record starts PENDING again.
func (s *DocumentService) Replace(ctx context.Context, actor domain.Actor, id uint, input *UploadDocumentInput) (*models.Document, error) {
	old, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("document")
		}
		return nil, err
	}
	if !actor.CanAccessMember(old.UserID) {
		return nil, domain.ErrForbidden
	}
	if old.ReplacedBy != nil {
		return nil, domain.Conflictf("document has already been replaced")
	}

	input.CategoryID = old.CategoryID
	replacement, err := s.Upload(ctx, actor, old.UserID, input)
	if err != nil {
		return nil, err
	}
	replacement.Version = old.Version + 1
	if err := s.docRepo.Save(ctx, replacement); err != nil {
		return nil, err
	}

	old.ReplacedBy = &replacement.ID
	if err := s.docRepo.Save(ctx, old); err != nil {
		return nil, err
	}

	return replacement, nil
}

// Delete removes a document record and its stored file
func (s *DocumentService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("document")
		}
		return err
	}
	if !actor.CanAccessMember(doc.UserID) {
		return domain.ErrForbidden
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(doc.FileHandle); err != nil {
		// Orphaned file, not a failed delete
		logrus.Warnf("⚠️ Failed to remove stored file %s: %v", doc.FileHandle, err)
	}
	return nil
}

// ListCategories returns all document categories
func (s *DocumentService) ListCategories(ctx context.Context) ([]*models.DocumentCategory, error) {
	return s.docRepo.ListCategories(ctx)
}

// ExpireOverdue flips VERIFIED documents past their expiry date to EXPIRED
// and returns how many were affected. Called from the scheduler.
func (s *DocumentService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.docRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logrus.Infof("📄 Expired %d overdue documents", n)
	}
	return n, nil
}
