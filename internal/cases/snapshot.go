package cases

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

// scopeSnapshot trims a snapshot to what viewer may read: the system log is
// admin-only, and clients see only themselves and notifications for their own cases.
func scopeSnapshot(snap state.Snapshot, viewer models.User) state.Snapshot {
	visible := make(map[string]bool, len(snap.Cases))
	for i, cs := range snap.Cases {
		snap.Cases[i] = present(cs, viewer)
		visible[cs.ID] = true
	}

	if viewer.Role != models.RoleAdmin {
		snap.SystemLogs = []models.AuditLog{}
	}
	if viewer.Role.IsStaff() {
		return snap
	}

	users := []models.User{}
	for _, u := range snap.Users {
		if u.ID == viewer.ID {
			users = append(users, u)
		}
	}
	snap.Users = users

	notes := []models.Notification{}
	for _, n := range snap.Notifications {
		if visible[n.CaseID] {
			notes = append(notes, n)
		}
	}
	snap.Notifications = notes
	return snap
}

// Snapshot godoc
// @Summary      Everything the current user may see
// @Description  Users, visible cases, notifications, settings and (for admins) the system log, read in one consistent step
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  state.Snapshot
// @Failure      401  {object}  models.ErrorResponse
// @Router       /me/snapshot [get]
func (h *Handler) Snapshot(c *fiber.Ctx) error {
	viewer := auth.MustUser(c)
	return c.JSON(scopeSnapshot(h.state.Snapshot(viewer), viewer))
}
