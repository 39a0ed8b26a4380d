// Package admin serves user management, the system log and firm settings.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aldoetobex/acelegal-case-desk/internal/audit"
	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/internal/mailer"
	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
	"github.com/aldoetobex/acelegal-case-desk/pkg/validation"
)

// ===== DTOs =====

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=120"`
	Role  string `json:"role" validate:"required,oneof=Client Lawyer Admin Secretary"`
}

type InviteResponse struct {
	User           models.User `json:"user"`
	InvitationSent bool        `json:"invitation_sent"`
}

type UpdateUserRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=Client Lawyer Admin Secretary"`
	Status *string `json:"status" validate:"omitempty,oneof=Active Inactive Invited"`
}

type PageLogs = models.Page[models.AuditLog]

// History reads the persisted audit trail. Only available with a database.
type History interface {
	CaseHistory(ctx context.Context, caseID string) ([]models.AuditRecord, error)
	SystemHistory(ctx context.Context) ([]models.AuditRecord, error)
}

type Handler struct {
	state   *state.Manager
	mail    mailer.Mailer
	history History
	log     *zap.SugaredLogger
}

// NewHandler wires the admin endpoints. history may be nil.
func NewHandler(st *state.Manager, mail mailer.Mailer, history History, log *zap.SugaredLogger) *Handler {
	return &Handler{state: st, mail: mail, history: history, log: log}
}

/* ================================ Users ================================= */

// List Users godoc
// @Summary      List users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query string false "Active | Inactive | Invited"
// @Param        role    query string false "Client | Lawyer | Admin | Secretary"
// @Success      200  {array}  models.User
// @Failure      403  {object}  models.ErrorResponse
// @Router       /admin/users [get]
func (h *Handler) Users(c *fiber.Ctx) error {
	status := models.UserStatus(c.Query("status"))
	role := models.Role(c.Query("role"))

	out := []models.User{}
	for _, u := range h.state.Users() {
		if status != "" && u.Status != status {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return c.JSON(out)
}

// Invite User godoc
// @Summary      Invite user
// @Description  Creates an Invited account and emails the invitation (best effort)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  InviteRequest  true  "Invitation"
// @Success      201  {object}  InviteResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /admin/users/invite [post]
func (h *Handler) Invite(c *fiber.Ctx) error {
	var in InviteRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	actor := auth.MustUser(c)
	u, err := h.state.InviteUser(&actor, in.Email, models.Role(in.Role))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()
	sent := true
	if err := h.mail.Send(ctx, mailer.Invitation(h.state.Settings().FirmName, u.Email, string(u.Role))); err != nil {
		sent = false
		h.log.Warnw("invitation email failed", "user", u.ID, "email", u.Email, "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(InviteResponse{User: u, InvitationSent: sent})
}

// Update User godoc
// @Summary      Update user role/status
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "user id"
// @Param        payload  body  UpdateUserRequest  true  "Fields to change"
// @Success      200  {object}  models.User
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/users/{id} [patch]
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var in UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var patch models.UserPatch
	if in.Role != nil {
		r := models.Role(*in.Role)
		patch.Role = &r
	}
	if in.Status != nil {
		s := models.UserStatus(*in.Status)
		patch.Status = &s
	}

	actor := auth.MustUser(c)
	u, err := h.state.UpdateUser(&actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

/* ================================= Logs ================================= */

func filterLogs(logs []models.AuditLog, category string) []models.AuditLog {
	if category == "" {
		return logs
	}
	out := []models.AuditLog{}
	for _, l := range logs {
		if string(l.Category) == category {
			out = append(out, l)
		}
	}
	return out
}

// System Logs godoc
// @Summary      System log
// @Description  Firm-wide log, newest first (paginated)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        category  query string false "User Action | Security | System"
// @Param        page      query int    false "page"
// @Param        pageSize  query int    false "pageSize"
// @Success      200  {object}  PageLogs
// @Router       /admin/logs [get]
func (h *Handler) Logs(c *fiber.Ctx) error {
	page, size := utils.ParsePage(c)
	logs := filterLogs(h.state.SystemLogs(), c.Query("category"))
	return c.JSON(utils.Paginate(logs, page, size))
}

// Export Logs godoc
// @Summary      Export system log
// @Description  Downloads the system log as an Excel workbook
// @Tags         admin
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        category  query string false "User Action | Security | System"
// @Success      200  {file}  binary
// @Router       /admin/logs/export [get]
func (h *Handler) ExportLogs(c *fiber.Ctx) error {
	logs := filterLogs(h.state.SystemLogs(), c.Query("category"))
	buf, err := audit.ExportXLSX(h.state.Settings().FirmName, logs)
	if err != nil {
		h.log.Errorw("log export failed", "error", err)
		return fiber.ErrInternalServerError
	}

	name := fmt.Sprintf("system-log-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(buf.Bytes())
}

// Log Archive godoc
// @Summary      Persisted audit trail
// @Description  Reads mirrored entries from the database: the system log, or one case with case_id
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        case_id  query string false "case id"
// @Success      200  {array}  models.AuditRecord
// @Failure      404  {object}  models.ErrorResponse  "no database configured"
// @Router       /admin/logs/archive [get]
func (h *Handler) Archive(c *fiber.Ctx) error {
	if h.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "no audit database configured")
	}
	var (
		recs []models.AuditRecord
		err  error
	)
	if caseID := c.Query("case_id"); caseID != "" {
		recs, err = h.history.CaseHistory(c.UserContext(), caseID)
	} else {
		recs, err = h.history.SystemHistory(c.UserContext())
	}
	if err != nil {
		h.log.Errorw("audit archive read failed", "error", err)
		return fiber.ErrInternalServerError
	}
	if recs == nil {
		recs = []models.AuditRecord{}
	}
	return c.JSON(recs)
}
