package cases

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/internal/storage"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/sanitize"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
	"github.com/aldoetobex/acelegal-case-desk/pkg/validation"
)

const maxUploadSize = 10 * 1024 * 1024

type UploadDocumentRequest struct {
	Name   string   `json:"name" validate:"required,max=200"`
	Type   string   `json:"type" validate:"required,oneof=PDF Word Image Other Correspondence"`
	Tags   []string `json:"tags" validate:"max=10,dive,max=30"`
	Status string   `json:"status" validate:"required,oneof=Draft Final Archived"`
}

type UpdateDocumentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Draft Final Archived"`
}

type DocumentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresIn int       `json:"expires_in"`
	Now       time.Time `json:"now"`
}

// typeFromFile guesses the document type of an uploaded file.
func typeFromFile(filename, contentType string) models.DocumentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.DocPDF
	case ".doc", ".docx", ".odt", ".rtf":
		return models.DocWord
	case ".eml", ".msg":
		return models.DocCorrespondence
	}
	if strings.HasPrefix(contentType, "image/") {
		return models.DocImage
	}
	return models.DocOther
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = sanitize.Text(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Upload Document godoc
// @Summary      Upload document
// @Description  Adds a new version of a named document. Send JSON for metadata only, or
// @Description  multipart/form-data with "file" (max 10MB) plus optional name, type, status, tags.
// @Tags         documents
// @Security     BearerAuth
// @Accept       json,multipart/form-data
// @Produce      json
// @Param        id       path      string                 true   "case id"
// @Param        payload  body      UploadDocumentRequest  false  "metadata (JSON)"
// @Param        file     formData  file                   false  "document bytes"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      413  {object}  models.ErrorResponse
// @Router       /cases/{id}/documents [post]
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}

	var (
		in    UploadDocumentRequest
		input state.DocumentInput
	)
	multipart := strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)

	if multipart {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required (use key: file)")
		}
		if fh.Size <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "empty file")
		}
		if fh.Size > maxUploadSize {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "max 10MB per file")
		}
		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}
		if ct == "" {
			ct = "application/octet-stream"
		}

		in = UploadDocumentRequest{
			Name:   sanitize.Text(c.FormValue("name", fh.Filename)),
			Type:   c.FormValue("type", string(typeFromFile(fh.Filename, ct))),
			Tags:   splitTags(c.FormValue("tags")),
			Status: c.FormValue("status", string(models.DocDraft)),
		}
		if errs, _ := validation.Validate(in); errs != nil {
			return validation.Respond(c, errs)
		}

		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "open failed")
		}
		defer f.Close()

		key := storage.ObjectKey(id, fh.Filename)
		if err := h.store.Put(c.UserContext(), key, f, ct, fh.Size); err != nil {
			h.log.Errorw("document upload failed", "case", id, "key", key, "error", err)
			return fiber.NewError(fiber.StatusBadGateway, "storage upload failed")
		}
		input.StorageKey = key
		input.Size = utils.FormatSize(fh.Size)
	} else {
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json")
		}
		in.Name = sanitize.Text(in.Name)
		if errs, _ := validation.Validate(in); errs != nil {
			return validation.Respond(c, errs)
		}
	}

	input.Name = in.Name
	input.Type = models.DocumentType(in.Type)
	input.Status = models.DocumentStatus(in.Status)
	input.Tags = in.Tags

	cs, err := h.state.UploadDocument(&viewer, id, input)
	if err != nil {
		if input.StorageKey != "" {
			if derr := h.store.Delete(c.UserContext(), input.StorageKey); derr != nil {
				h.log.Warnw("orphaned document object", "key", input.StorageKey, "error", derr)
			}
		}
		return err
	}
	h.log.Infow("document uploaded", "case", id, "name", input.Name, "version", cs.Documents[0].Version, "stored", input.StorageKey != "")
	return c.Status(fiber.StatusCreated).JSON(present(cs, viewer))
}

// Update Document Status godoc
// @Summary      Update document status
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "case id"
// @Param        docID    path  string                       true  "document id"
// @Param        payload  body  UpdateDocumentStatusRequest  true  "status"
// @Success      200  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/documents/{docID} [patch]
func (h *Handler) UpdateDocumentStatus(c *fiber.Ctx) error {
	var in UpdateDocumentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}
	cs, err := h.state.UpdateDocumentStatus(&viewer, id, c.Params("docID"), models.DocumentStatus(in.Status))
	if err != nil {
		return err
	}
	return c.JSON(present(cs, viewer))
}

// Signed Document URL godoc
// @Summary      Get signed URL
// @Description  Short-lived download link for a document that has stored bytes
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id     path string true "case id"
// @Param        docID  path string true "document id"
// @Success      200  {object}  DocumentURLResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      502  {object}  models.ErrorResponse
// @Router       /cases/{id}/documents/{docID}/url [get]
func (h *Handler) DocumentURL(c *fiber.Ctx) error {
	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}
	doc, err := h.state.Document(viewer, id, c.Params("docID"))
	if err != nil {
		return err
	}
	if doc.StorageKey == "" {
		return fiber.NewError(fiber.StatusNotFound, "document has no stored file")
	}

	url, err := h.store.SignedURL(c.UserContext(), doc.StorageKey, h.urlTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "stored file missing")
		}
		h.log.Errorw("sign url failed", "case", id, "doc", doc.ID, "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "could not sign url")
	}
	return c.JSON(DocumentURLResponse{URL: url, ExpiresIn: int(h.urlTTL.Seconds()), Now: time.Now().UTC()})
}
