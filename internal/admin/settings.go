package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/sanitize"
	"github.com/aldoetobex/acelegal-case-desk/pkg/validation"
)

type SettingsRequest struct {
	Theme           *string `json:"theme" validate:"omitempty,oneof=light dark"`
	FirmName        *string `json:"firmName" validate:"omitempty,min=2,max=120"`
	FirmAddress     *string `json:"firmAddress" validate:"omitempty,max=300"`
	RetentionPeriod *string `json:"retentionPeriod" validate:"omitempty,numeric,max=3"`
	Versioning      *bool   `json:"versioning"`
	IPWhitelist     *string `json:"ipWhitelist" validate:"omitempty,ipallowlist"`
}

func clean(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize.Text(*s)
	return &v
}

// Get Settings godoc
// @Summary      Firm settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Settings
// @Router       /settings [get]
func (h *Handler) Settings(c *fiber.Ctx) error {
	return c.JSON(h.state.Settings())
}

// Update Settings godoc
// @Summary      Update firm settings
// @Description  Merges the provided fields; the change is recorded in the system log
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  SettingsRequest  true  "Fields to change"
// @Success      200  {object}  models.Settings
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /settings [patch]
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var in SettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.FirmName = clean(in.FirmName)
	in.FirmAddress = clean(in.FirmAddress)
	if in.IPWhitelist != nil {
		v := strings.TrimSpace(*in.IPWhitelist)
		in.IPWhitelist = &v
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	patch := models.SettingsPatch{
		FirmName:        in.FirmName,
		FirmAddress:     in.FirmAddress,
		RetentionPeriod: in.RetentionPeriod,
		Versioning:      in.Versioning,
		IPWhitelist:     in.IPWhitelist,
	}
	if in.Theme != nil {
		t := models.Theme(*in.Theme)
		patch.Theme = &t
	}

	actor := auth.MustUser(c)
	s, err := h.state.UpdateSettings(&actor, patch)
	if err != nil {
		return err
	}
	return c.JSON(s)
}
