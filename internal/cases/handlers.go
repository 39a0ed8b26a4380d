package cases

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/internal/storage"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/sanitize"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
	"github.com/aldoetobex/acelegal-case-desk/pkg/validation"
)

// ===== DTOs =====

type CreateCaseRequest struct {
	Title            string `json:"title" validate:"required,max=120"`
	ClientName       string `json:"client_name" validate:"required,min=2,max=80"`
	AssignedLawyerID string `json:"assigned_lawyer_id" validate:"required"`
}

type KeyDateRequest struct {
	Date        string `json:"date" validate:"required,isodate"`
	Description string `json:"description" validate:"required,max=200"`
}

type NoteRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// CaseListItem is one row of the dashboard case list.
type CaseListItem struct {
	ID             string            `json:"id"`
	CaseNumber     string            `json:"case_number"`
	Title          string            `json:"title"`
	ClientName     string            `json:"client_name"`
	AssignedLawyer string            `json:"assigned_lawyer"`
	Status         models.CaseStatus `json:"status"`
	LegalHold      bool              `json:"legal_hold"`
	Documents      int               `json:"documents"`
	LastActivity   string            `json:"last_activity"`
	CreatedAt      time.Time         `json:"created_at"`
}

type PageCases = models.Page[CaseListItem]

type Handler struct {
	state  *state.Manager
	store  storage.Store
	log    *zap.SugaredLogger
	urlTTL time.Duration
}

func NewHandler(st *state.Manager, store storage.Store, log *zap.SugaredLogger) *Handler {
	return &Handler{state: st, store: store, log: log, urlTTL: 15 * time.Minute}
}

// present hides what the viewer may not read. Clients never see internal notes.
func present(cs models.Case, viewer models.User) models.Case {
	if viewer.Role == models.RoleClient {
		cs.InternalNotes = []models.InternalNote{}
	}
	return cs
}

func listItem(cs models.Case) CaseListItem {
	item := CaseListItem{
		ID:             cs.ID,
		CaseNumber:     cs.CaseNumber,
		Title:          cs.Title,
		ClientName:     cs.Client.Name,
		AssignedLawyer: cs.AssignedLawyer.Name,
		Status:         cs.Status,
		LegalHold:      cs.LegalHold,
		Documents:      len(cs.Documents),
		CreatedAt:      cs.CreatedAt,
	}
	if len(cs.AuditLogs) > 0 {
		last := cs.AuditLogs[0]
		item.LastActivity = sanitize.Summary(sanitize.RedactPII(last.Action+": "+last.Details), 80)
	}
	return item
}

// List Cases godoc
// @Summary      List cases
// @Description  Staff see every case; clients see only their own (paginated, newest first)
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        page      query int    false "page"
// @Param        pageSize  query int    false "pageSize"
// @Param        status    query string false "Active | Closed | Pending"
// @Param        q         query string false "search in title, number and client"
// @Success      200  {object}  PageCases
// @Failure      401  {object}  models.ErrorResponse
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	viewer := auth.MustUser(c)
	page, size := utils.ParsePage(c)
	status := models.CaseStatus(strings.TrimSpace(c.Query("status")))
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	items := []CaseListItem{}
	for _, cs := range h.state.Cases(viewer) {
		if status != "" && cs.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(cs.Title), q) &&
			!strings.Contains(strings.ToLower(cs.CaseNumber), q) &&
			!strings.Contains(strings.ToLower(cs.Client.Name), q) {
			continue
		}
		items = append(items, listItem(cs))
	}
	return c.JSON(utils.Paginate(items, page, size))
}

// Get case detail
// @Summary      Case detail
// @Description  Documents, key dates, audit trail and (staff only) internal notes
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path string true "case id"
// @Success      200  {object}  models.Case
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	viewer := auth.MustUser(c)
	cs, err := h.state.Case(viewer, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(present(cs, viewer))
}

// Create Case godoc
// @Summary      Create case
// @Description  Opens a Pending case and creates the client account
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      422  {object}  models.ErrorResponse  "assigned lawyer not found | assigned user is not a lawyer"
// @Router       /cases [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Title = sanitize.Text(in.Title)
	in.ClientName = sanitize.Text(in.ClientName)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	actor := auth.MustUser(c)
	cs, err := h.state.CreateCase(&actor, in.Title, in.ClientName, in.AssignedLawyerID)
	if err != nil {
		return err
	}
	h.log.Infow("case created", "case", cs.ID, "number", cs.CaseNumber, "by", actor.ID)
	return c.Status(fiber.StatusCreated).JSON(present(cs, actor))
}

// Lawyers godoc
// @Summary      Assignable lawyers
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.User
// @Router       /lawyers [get]
func (h *Handler) Lawyers(c *fiber.Ctx) error {
	return c.JSON(h.state.Lawyers())
}

// visible resolves the path case for the current viewer; hidden cases are 404.
func (h *Handler) visible(c *fiber.Ctx) (models.User, string, error) {
	viewer := auth.MustUser(c)
	id := c.Params("id")
	if _, err := h.state.Case(viewer, id); err != nil {
		return viewer, "", err
	}
	return viewer, id, nil
}

// Add Key Date godoc
// @Summary      Add key date
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "case id"
// @Param        payload  body  KeyDateRequest  true  "Key date"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/key-dates [post]
func (h *Handler) AddKeyDate(c *fiber.Ctx) error {
	var in KeyDateRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Description = sanitize.Text(in.Description)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	date, _ := time.Parse(time.DateOnly, in.Date)

	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}
	cs, err := h.state.AddKeyDate(&viewer, id, date, in.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(present(cs, viewer))
}

// Add Internal Note godoc
// @Summary      Add internal note
// @Description  Confidential staff note; never shown to clients
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string       true  "case id"
// @Param        payload  body  NoteRequest  true  "Note"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/notes [post]
func (h *Handler) AddNote(c *fiber.Ctx) error {
	var in NoteRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Content = sanitize.Text(in.Content)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}
	cs, err := h.state.AddInternalNote(&viewer, id, in.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(present(cs, viewer))
}

// Toggle Legal Hold godoc
// @Summary      Toggle legal hold
// @Description  Flips the legal-hold flag and returns the refreshed case
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path string true "case id"
// @Success      200  {object}  models.Case
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/legal-hold [post]
func (h *Handler) ToggleLegalHold(c *fiber.Ctx) error {
	viewer, id, err := h.visible(c)
	if err != nil {
		return err
	}
	cs, err := h.state.ToggleLegalHold(&viewer, id)
	if err != nil {
		return err
	}
	h.log.Infow("legal hold toggled", "case", cs.ID, "enabled", cs.LegalHold, "by", viewer.ID)
	return c.JSON(present(cs, viewer))
}
