package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

/* ============================== Middleware ============================== */

// RequireAuth validates a Bearer JWT against the session store and injects the
// current user, its id, role and session id into the context.
func RequireAuth(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			return fiber.ErrUnauthorized
		}
		tokenStr := strings.TrimPrefix(h, "Bearer ")

		u, sessionID, err := svc.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			if errors.Is(err, ErrAccountNotActive) {
				return fiber.NewError(fiber.StatusForbidden, DisplayMessage(err))
			}
			return fiber.ErrUnauthorized
		}

		c.Locals("user", u)
		c.Locals("userID", u.ID)
		c.Locals("role", string(u.Role))
		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}

// MustUser reads the authenticated user from context or panics (programming error).
func MustUser(c *fiber.Ctx) models.User {
	if v, ok := c.Locals("user").(models.User); ok {
		return v
	}
	panic(errors.New("user not in context"))
}

// MustRole reads the authenticated user role from context or panics (programming error).
func MustRole(c *fiber.Ctx) models.Role {
	if v, ok := c.Locals("role").(string); ok {
		return models.Role(v)
	}
	panic(errors.New("role not in context"))
}

// RequireRole ensures the authenticated user has one of the given roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := MustRole(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}

/* =========================== Error Formatting =========================== */

// DisplayMessage is the text shown to the user for an auth failure.
func DisplayMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password. Please try again."
	case errors.Is(err, ErrAccountNotActive):
		return "Your account is pending approval or has been deactivated. Please contact an administrator."
	case errors.Is(err, ErrSsoUnavailable):
		return "SSO login failed. Please contact an administrator."
	}
	return err.Error()
}

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized, DisplayMessage(err), true
	case errors.Is(err, ErrSsoUnavailable):
		return fiber.StatusUnauthorized, DisplayMessage(err), true
	case errors.Is(err, ErrAccountNotActive):
		return fiber.StatusForbidden, DisplayMessage(err), true
	case errors.Is(err, state.ErrNoSession):
		return fiber.StatusUnauthorized, "no active session", true
	case errors.Is(err, state.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "email already exists", true
	case errors.Is(err, state.ErrUnknownLawyer),
		errors.Is(err, state.ErrNotALawyer):
		return fiber.StatusUnprocessableEntity, err.Error(), true
	case errors.Is(err, state.ErrCaseNotFound),
		errors.Is(err, state.ErrDocumentNotFound),
		errors.Is(err, state.ErrUserNotFound):
		return fiber.StatusNotFound, err.Error(), true
	}
	return 0, "", false
}

// ErrorHandler is a global Fiber error handler that returns a consistent JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Defaults
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	// Fiber errors carry status codes
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if strings.TrimSpace(fe.Message) != "" {
			msg = fe.Message
		} else {
			msg = fiber.ErrInternalServerError.Message
			switch code {
			case fiber.StatusBadRequest:
				msg = fiber.ErrBadRequest.Message
			case fiber.StatusUnauthorized:
				msg = fiber.ErrUnauthorized.Message
			case fiber.StatusForbidden:
				msg = fiber.ErrForbidden.Message
			case fiber.StatusNotFound:
				msg = fiber.ErrNotFound.Message
			case fiber.StatusConflict:
				msg = fiber.ErrConflict.Message
			}
		}
	} else if s, m, ok := statusFor(err); ok {
		code, msg = s, m
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Code:    httpCodeToString(code),
		Error:   true,
		Message: msg,
	})
}
