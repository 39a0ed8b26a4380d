package state

import (
	"fmt"
	"strings"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
)

// NewUser is a self-service sign-up candidate. PasswordHash is already hashed.
type NewUser struct {
	Name         string
	Email        string
	Role         models.Role
	PasswordHash string
}

// RegisterUser creates an Invited account that an administrator must activate.
// Emails are unique case-insensitively; a collision leaves the user list untouched.
func (m *Manager) RegisterUser(in NewUser) (models.User, error) {
	var out models.User
	err := m.mutate(func() (*pendingLog, error) {
		email := strings.TrimSpace(in.Email)
		if m.findUserByEmail(email) != nil {
			return nil, ErrEmailAlreadyExists
		}
		id := m.newID("u")
		u := &models.User{
			ID:           id,
			Name:         strings.TrimSpace(in.Name),
			Email:        email,
			Role:         in.Role,
			Status:       models.UserInvited,
			PasswordHash: in.PasswordHash,
			AvatarURL:    utils.AvatarURL(id),
		}
		m.users = append(m.users, u)
		out = *u
		return m.appendSystemLog(nil, "User Signed Up",
			fmt.Sprintf("New user %s registered with role %s. Account requires approval.", u.Email, u.Role),
			models.LogUserAction), nil
	})
	return out, err
}

// InviteUser adds a placeholder account in Invited status.
//
// Unlike RegisterUser it does not reject an email that is already taken.
// TODO: decide with the firm whether invites should share the sign-up uniqueness rule.
func (m *Manager) InviteUser(actor *models.User, email string, role models.Role) (models.User, error) {
	var out models.User
	err := m.mutate(func() (*pendingLog, error) {
		id := m.newID("u")
		u := &models.User{
			ID:        id,
			Name:      "Invited User",
			Email:     strings.TrimSpace(email),
			Role:      role,
			Status:    models.UserInvited,
			AvatarURL: utils.AvatarURL(id),
		}
		m.users = append(m.users, u)
		out = *u
		return m.appendSystemLog(actor, "Invited User",
			fmt.Sprintf("Sent invitation to %s with role %s.", u.Email, u.Role), models.LogUserAction), nil
	})
	return out, err
}

// UpdateUser merges role and/or status into a user. An empty patch changes nothing
// and logs nothing.
func (m *Manager) UpdateUser(actor *models.User, userID string, patch models.UserPatch) (models.User, error) {
	var out models.User
	err := m.mutate(func() (*pendingLog, error) {
		u := m.findUser(userID)
		if u == nil {
			return nil, ErrUserNotFound
		}
		// The log line describes the account as it was found, before the patch applies.
		before := *u
		if patch.Empty() {
			out = before
			return nil, nil
		}

		var changes []string
		if patch.Role != nil {
			u.Role = *patch.Role
			changes = append(changes, fmt.Sprintf("role to %s", *patch.Role))
		}
		if patch.Status != nil {
			u.Status = *patch.Status
			changes = append(changes, fmt.Sprintf("status to %s", *patch.Status))
		}
		m.syncCaseParties(u)
		out = *u

		return m.appendSystemLog(actor, "Updated User",
			fmt.Sprintf("Changed %s for %s.", strings.Join(changes, ", "), before.Email),
			models.LogUserAction), nil
	})
	return out, err
}

// syncCaseParties refreshes the embedded client/lawyer copies held by cases.
func (m *Manager) syncCaseParties(u *models.User) {
	for _, c := range m.cases {
		if c.Client.ID == u.ID {
			c.Client = *u
		}
		if c.AssignedLawyer.ID == u.ID {
			c.AssignedLawyer = *u
		}
	}
}

// LogSystemEvent appends an arbitrary entry to the system log, e.g. a security event
// raised by the auth layer.
func (m *Manager) LogSystemEvent(actor *models.User, action, details string, category models.LogCategory) {
	_ = m.mutate(func() (*pendingLog, error) {
		return m.appendSystemLog(actor, action, details, category), nil
	})
}
