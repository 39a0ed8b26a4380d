package notifications

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

type ListResponse struct {
	Unread int                   `json:"unread"`
	Items  []models.Notification `json:"items"`
}

type Handler struct{ state *state.Manager }

func NewHandler(st *state.Manager) *Handler { return &Handler{state: st} }

// List Notifications godoc
// @Summary      Recent notifications
// @Description  The ten most recent firm notifications, newest first
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ListResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /notifications [get]
func (h *Handler) List(c *fiber.Ctx) error {
	return c.JSON(ListResponse{Unread: h.state.UnreadCount(), Items: h.state.Notifications()})
}

// Mark Read godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /notifications/read [post]
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	h.state.MarkNotificationsRead()
	return h.List(c)
}
