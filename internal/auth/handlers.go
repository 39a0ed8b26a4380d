package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/validation"
)

/* ================================ DTOs ================================= */

// Request body for /signup
type SignupRequest struct {
	Role     string `json:"role" validate:"required,oneof=Client Lawyer Admin Secretary"`
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Request body for /login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

// Standard auth response
type AuthResponse struct {
	Token       string      `json:"token"`
	User        models.User `json:"user"`
	LandingView View        `json:"landing_view"`
}

// Response for /signup; the account needs activation before it can sign in.
type SignupResponse struct {
	User    models.User `json:"user"`
	View    View        `json:"view"`
	Message string      `json:"message"`
}

// Response for /logout
type LogoutResponse struct {
	View View `json:"view"`
}

/* ============================== Handler ================================= */

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

/* =============================== Signup ================================= */

// @Summary      Sign up
// @Description  Register a new account. It stays Invited until an administrator activates it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignupRequest  true  "Signup payload"
// @Success      201      {object}  SignupResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      409      {object}  models.ErrorResponse  "email already exists"
// @Router       /signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	var in SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	in.Email = strings.TrimSpace(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	u, err := h.svc.SignUp(c.UserContext(), SignUpInput{
		Name:     in.Name,
		Email:    in.Email,
		Role:     models.Role(in.Role),
		Password: in.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(SignupResponse{
		User:    u,
		View:    ViewLogin,
		Message: "Account created. An administrator must approve it before you can sign in.",
	})
}

/* ================================ Login ================================= */

// @Summary      Login
// @Description  Authenticate and receive a JWT plus the landing view
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginRequest  true  "Login payload"
// @Success      200      {object}  AuthResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Failure      403      {object}  models.ErrorResponse  "account not active"
// @Router       /login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Email = strings.TrimSpace(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	sess, err := h.svc.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{Token: sess.Token, User: sess.User, LandingView: sess.Landing})
}

/* ================================= SSO ================================== */

// @Summary      SSO login
// @Description  Sign in through an identity provider (google or microsoft)
// @Tags         auth
// @Produce      json
// @Param        provider  path  string  true  "google | microsoft"
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /sso/{provider} [post]
func (h *Handler) SSOLogin(c *fiber.Ctx) error {
	sess, err := h.svc.SSOLogin(c.UserContext(), c.Params("provider"))
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{Token: sess.Token, User: sess.User, LandingView: sess.Landing})
}

/* ================================ Logout ================================ */

// @Summary      Logout
// @Description  Revoke the current session
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  LogoutResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("sessionID").(string)
	if sessionID == "" {
		return fiber.ErrUnauthorized
	}
	view, err := h.svc.Logout(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(LogoutResponse{View: view})
}

/* ================================= Me =================================== */

// @Summary      Get current user profile
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  models.ErrorResponse
// @Router       /me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(MustUser(c))
}
