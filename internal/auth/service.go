package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrSsoUnavailable     = errors.New("sso login unavailable")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// View is the screen the client should show after an auth transition.
type View string

const (
	ViewLogin     View = "login"
	ViewSignup    View = "signup"
	ViewDashboard View = "dashboard"
	ViewAdmin     View = "admin"
	ViewSettings  View = "settings"
)

// LandingView is where a freshly signed-in user starts.
func LandingView(role models.Role) View {
	if role == models.RoleAdmin {
		return ViewAdmin
	}
	return ViewDashboard
}

// Session is an established sign-in.
type Session struct {
	ID        string      `json:"-"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	Landing   View        `json:"landing_view"`
	ExpiresAt time.Time   `json:"expires_at"`
}

/* ============================== JWT Claims ============================== */

// Claims represents the JWT payload we issue and expect.
// RegisteredClaims.ID carries the session id.
type Claims struct {
	Sub  string      `json:"sub"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

/* =============================== Service ================================ */

// Service signs users in and out against the state manager's user list.
type Service struct {
	state    *state.Manager
	sessions SessionStore
	idp      IdentityProvider
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewService(st *state.Manager, sessions SessionStore, idp IdentityProvider, secret string, ttl time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{
		state:    st,
		sessions: sessions,
		idp:      idp,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Login checks email (case-insensitive) and password, then opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, ok := s.state.UserByEmail(email)
	if !ok || !CheckPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	if u.Status != models.UserActive {
		return Session{}, ErrAccountNotActive
	}
	return s.startSession(ctx, u)
}

// SignUpInput is a self-service registration. The account stays Invited until activated.
type SignUpInput struct {
	Name     string
	Email    string
	Role     models.Role
	Password string
}

// SignUp registers an Invited account. It never signs the user in.
func (s *Service) SignUp(_ context.Context, in SignUpInput) (models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	return s.state.RegisterUser(state.NewUser{
		Name:         in.Name,
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		PasswordHash: hash,
	})
}

// SSOLogin signs in the account the identity provider vouches for, if it is Active.
func (s *Service) SSOLogin(ctx context.Context, provider string) (Session, error) {
	name, ok := CanonicalProvider(provider)
	if !ok {
		return Session{}, ErrSsoUnavailable
	}
	email, err := s.idp.Authenticate(ctx, name)
	if err != nil {
		s.log.Warnw("sso authenticate failed", "provider", name, "error", err)
		return Session{}, ErrSsoUnavailable
	}
	u, found := s.state.UserByEmail(email)
	if !found || u.Status != models.UserActive {
		return Session{}, ErrSsoUnavailable
	}
	sess, err := s.startSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.state.LogSystemEvent(&u, "SSO Login", fmt.Sprintf("User %s logged in via %s.", u.Email, name), models.LogSecurity)
	return sess, nil
}

// Logout revokes the session. Unknown sessions are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) (View, error) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return "", err
	}
	return ViewLogin, nil
}

// Authenticate verifies a bearer token, checks the session is still open and
// re-resolves the user so deactivated accounts lose access immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return models.User{}, "", ErrInvalidToken
	}

	userID, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return models.User{}, "", err
	}
	if !ok || userID != claims.Sub {
		return models.User{}, "", ErrInvalidToken
	}

	u, found := s.state.UserByID(userID)
	if !found {
		return models.User{}, "", ErrInvalidToken
	}
	if u.Status != models.UserActive {
		return models.User{}, "", ErrAccountNotActive
	}
	return u, claims.ID, nil
}

func (s *Service) startSession(ctx context.Context, u models.User) (Session, error) {
	sessionID := uuid.NewString()
	now := s.now()
	expires := now.Add(s.ttl)

	claims := &Claims{
		Sub:  u.ID,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.Create(ctx, sessionID, u.ID, s.ttl); err != nil {
		return Session{}, err
	}
	s.log.Infow("session started", "user", u.ID, "role", u.Role)

	return Session{
		ID:        sessionID,
		Token:     token,
		User:      u,
		Landing:   LandingView(u.Role),
		ExpiresAt: expires,
	}, nil
}
