package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/pagination"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles document upload and verification endpoints
type DocumentHandler struct {
	docService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// readUploadInput extracts the multipart form fields and file
func readUploadInput(c *fiber.Ctx) (*services.UploadDocumentInput, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	if fileHeader.Size > services.MaxDocumentSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "file exceeds the 10 MiB limit")
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return nil, err
	}

	categoryID, _ := parseFormUint(c, "category_id")

	input := &services.UploadDocumentInput{
		CategoryID:     categoryID,
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		DocumentNumber: c.FormValue("document_number"),
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Data:           data,
	}

	if v := c.FormValue("issue_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			input.IssueDate = &t
		}
	}
	if v := c.FormValue("expiry_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			input.ExpiryDate = &t
		}
	}

	return input, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, services.MaxDocumentSize+1))
}

func parseFormUint(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.FormValue(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// Upload handles document upload
// @Summary Upload document
// @Description Upload a document file (max 10 MiB) with metadata
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Param category_id formData int true "Category ID"
// @Param title formData string true "Title"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	input, err := readUploadInput(c)
	if err != nil {
		if e, ok := err.(*fiber.Error); ok && e.Code == fiber.StatusRequestEntityTooLarge {
			return response.PayloadTooLarge(c, e.Message)
		}
		return response.BadRequest(c, "A document file is required")
	}

	doc, err := h.docService.Upload(c.Context(), actor, actor.UserID, input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Document uploaded successfully", doc)
}

// Get returns one document record
// @Summary Get document by ID
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	doc, err := h.docService.Get(c.Context(), actor, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Document retrieved successfully", doc)
}

// Download streams the stored file
// @Summary Download document file
// @Tags Documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Router /documents/{id}/file [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	path, err := h.docService.ResolveFile(c.Context(), actor, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendFile(path)
}

// ListMine returns the calling member's documents
// @Summary List own documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /documents/mine [get]
func (h *DocumentHandler) ListMine(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	docs, err := h.docService.ListMine(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Documents retrieved successfully", docs)
}

// List returns a page of all documents (admin)
// @Summary List all documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	params := pagination.GetParams(c)

	docs, total, err := h.docService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Documents retrieved successfully",
		pagination.NewResponse(docs, params, total))
}

// ListPending returns all documents awaiting verification (admin)
// @Summary List pending documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /documents/pending [get]
func (h *DocumentHandler) ListPending(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	docs, err := h.docService.ListPending(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Pending documents retrieved successfully", docs)
}

// Verify applies a verifier decision to a document
// @Summary Verify document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param body body services.VerifyDocumentInput true "Verification decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /documents/{id}/verify [post]
func (h *DocumentHandler) Verify(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	var input services.VerifyDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.docService.Verify(c.Context(), actor, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Document processed successfully", doc)
}

// Replace uploads a new version of a document
// @Summary Replace document
// @Description Upload a new version of an existing document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param file formData file true "Replacement file"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /documents/{id}/replace [post]
func (h *DocumentHandler) Replace(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	input, err := readUploadInput(c)
	if err != nil {
		if e, ok := err.(*fiber.Error); ok && e.Code == fiber.StatusRequestEntityTooLarge {
			return response.PayloadTooLarge(c, e.Message)
		}
		return response.BadRequest(c, "A document file is required")
	}

	doc, err := h.docService.Replace(c.Context(), actor, id, input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Created(c, "Document replaced successfully", doc)
}

// Delete removes a document
// @Summary Delete document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	if err := h.docService.Delete(c.Context(), actor, id); err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Document deleted successfully", nil)
}

// ListCategories returns all document categories
// @Summary List document categories
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Response
// @Router /documents/categories [get]
func (h *DocumentHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.docService.ListCategories(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Categories retrieved successfully", categories)
}
