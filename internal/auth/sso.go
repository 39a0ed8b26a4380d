package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrUnsupportedProvider = errors.New("unsupported sso provider")

// IdentityProvider resolves an SSO sign-in to the email of a firm account.
type IdentityProvider interface {
	Authenticate(ctx context.Context, provider string) (string, error)
}

// Providers offered on the login screen.
const (
	ProviderGoogle    = "Google"
	ProviderMicrosoft = "Microsoft"
)

// CanonicalProvider maps a path segment such as "google" to its display name.
func CanonicalProvider(p string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "google":
		return ProviderGoogle, true
	case "microsoft":
		return ProviderMicrosoft, true
	}
	return "", false
}

// DesignatedAccount signs every supported provider in as one fixed account.
// It stands in until a real OAuth integration exists.
type DesignatedAccount struct {
	Email string
}

func (d DesignatedAccount) Authenticate(_ context.Context, provider string) (string, error) {
	if _, ok := CanonicalProvider(provider); !ok {
		return "", ErrUnsupportedProvider
	}
	return d.Email, nil
}
