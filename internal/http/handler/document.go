package handler

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docsearch/internal/auth"
	"docsearch/internal/extract"
	"docsearch/internal/http/middleware"
	"docsearch/internal/model"
	"docsearch/internal/service"
	"docsearch/internal/storage"
)

// uploadRequest is the wire shape of POST /api/upload-index. UserID is
// accepted for compatibility with older clients but ignored: the session
// resolved by middleware is authoritative for ownership.
type uploadRequest struct {
	FileName      string `json:"fileName"`
	Base64Content string `json:"base64Content"`
	Content       string `json:"content"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Topic         string `json:"topic"`
	UserID        string `json:"user_id"`
}

type deleteRequest struct {
	DocID   string `json:"docId"`
	FileURL string `json:"fileUrl"`
}

// searchResponse carries results plus an advisory message. For a query with
// zero matches the message distinguishes "nothing matched" from failure.
type searchResponse struct {
	Documents []model.Document `json:"documents"`
	Message   string           `json:"message,omitempty"`
}

// HealthCheck returns a handler that verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe returns a minimal liveness handler.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadIndex handles POST /api/upload-index: decode the payload, run the
// upload workflow for the session user, and return the stored document.
//
// @Summary Upload and index a document
// @Accept json
// @Produce json
// @Success 201 {object} map[string]model.Document
// @Router /api/upload-index [post]
func UploadIndex(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		var data []byte
		if req.Base64Content != "" {
			decoded, err := base64.StdEncoding.DecodeString(req.Base64Content)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BASE64", "base64Content is not valid base64")
			}
			data = decoded
		}

		doc, err := svc.Upload(c.UserContext(), middleware.SessionFromCtx(c), service.UploadInput{
			FileName: req.FileName,
			Data:     data,
			Content:  req.Content,
			Title:    req.Title,
			Category: req.Category,
			Topic:    req.Topic,
		})
		if err != nil {
			return uploadErrorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": doc})
	}
}

func uploadErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFileRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrTitleRequired):
		return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
	case errors.Is(err, service.ErrCategoryRequired):
		return writeError(c, fiber.StatusBadRequest, "CATEGORY_REQUIRED", "category is required")
	case errors.Is(err, extract.ErrUnsupportedType):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "only pdf, png, jpg, jpeg, and docx files are supported")
	case errors.Is(err, auth.ErrUnauthenticated):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.Is(err, extract.ErrEmptyContent), errors.Is(err, extract.ErrFailureSentinel):
		return writeError(c, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", "extracted content was empty or contained an error")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// SearchDocuments handles GET /api/search?q=. An empty query returns an empty
// result set without touching the backend; zero matches carries an advisory
// message, not an error status.
//
// @Summary Full-text search over the session user's documents
// @Produce json
// @Success 200 {object} searchResponse
// @Router /api/search [get]
func SearchDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")

		docs, err := svc.Search(c.UserContext(), middleware.SessionFromCtx(c), query)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		res := searchResponse{Documents: docs}
		if len(docs) == 0 && query != "" {
			res.Message = "no documents matched your search query"
		}
		return c.JSON(res)
	}
}

// ListDocuments handles GET /api/documents: every document owned by the
// session user, newest first.
//
// @Summary List the session user's documents
// @Produce json
// @Success 200 {object} searchResponse
// @Router /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListAll(c.UserContext(), middleware.SessionFromCtx(c))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(searchResponse{Documents: docs})
	}
}

// GetDocument handles GET /api/documents/:id. Ownership is enforced in the
// service: documents belonging to other users read as not found.
//
// @Summary Fetch one of the session user's documents by id
// @Produce json
// @Success 200 {object} map[string]model.Document
// @Router /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		doc, err := svc.Get(c.UserContext(), middleware.SessionFromCtx(c), id)
		switch {
		case err == nil:
			return c.JSON(fiber.Map{"document": doc})
		case errors.Is(err, service.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		case errors.Is(err, auth.ErrUnauthenticated):
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// DeleteFile handles POST /api/deleteFile: the administrative delete, already
// authorized by the ServiceRole middleware.
//
// @Summary Administratively delete a document and its stored binary
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/deleteFile [post]
func DeleteFile(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		err := svc.AdminDelete(c.UserContext(), req.DocID, req.FileURL)
		switch {
		case err == nil:
			return c.JSON(fiber.Map{
				"success": true,
				"message": "document and storage file deleted successfully",
			})
		case errors.Is(err, service.ErrDocIDRequired), errors.Is(err, service.ErrFileURLRequired):
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "missing docId or fileUrl")
		case errors.Is(err, storage.ErrMalformedURL):
			return writeError(c, fiber.StatusBadRequest, "MALFORMED_URL", "invalid file URL format for this bucket")
		default:
			return writeError(c, fiber.StatusInternalServerError, "DELETE_FAILED", "delete operation failed")
		}
	}
}

// ExtractDocx handles POST /api/extract-docx: multipart form with a single
// "file" field, responding with the raw extracted text.
//
// @Summary Extract plain text from a DOCX file
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/extract-docx [post]
func ExtractDocx() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		text, err := extract.DocxText(data)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", "cannot extract text from document")
		}
		return c.JSON(fiber.Map{"text": text})
	}
}
