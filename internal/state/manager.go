// Package state owns the firm's in-memory domain collections.
//
// Manager is the only writer of users, cases, logs, notifications and settings.
// Every value it hands out is a deep copy; callers change state only through
// its operations, each of which appends one audit or system log entry.
package state

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aldoetobex/acelegal-case-desk/internal/audit"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
)

var (
	ErrUnknownLawyer      = errors.New("assigned lawyer not found")
	ErrNotALawyer         = errors.New("assigned user is not a lawyer")
	ErrCaseNotFound       = errors.New("case not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNoSession          = errors.New("no active session")
)

// MaxNotifications is how many notifications are retained; older ones are evicted.
const MaxNotifications = 10

// systemActor is the attribution used for system log entries made without a session.
const systemActor = "System"

// Manager is the single owned state container.
type Manager struct {
	mu sync.Mutex

	users         []*models.User
	cases         []*models.Case // newest first
	systemLogs    []models.AuditLog
	notifications []models.Notification
	settings      models.Settings

	now     func() time.Time
	newID   func(prefix string) string
	content ContentSource
	sink    audit.Sink
	log     *zap.SugaredLogger
}

type Option func(*Manager)

// WithClock replaces time.Now; tests pin the clock to check case numbers and ordering.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithIDs replaces the UUID-based id generator.
func WithIDs(newID func(prefix string) string) Option { return func(m *Manager) { m.newID = newID } }

func WithContentSource(c ContentSource) Option { return func(m *Manager) { m.content = c } }

func WithSink(s audit.Sink) Option { return func(m *Manager) { m.sink = s } }

func WithLogger(l *zap.SugaredLogger) Option { return func(m *Manager) { m.log = l } }

func WithSettings(s models.Settings) Option { return func(m *Manager) { m.settings = s } }

// WithUsers seeds the user list. Users are copied.
func WithUsers(users ...models.User) Option {
	return func(m *Manager) {
		for _, u := range users {
			u := u
			m.users = append(m.users, &u)
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		settings: models.DefaultSettings(),
		now:      time.Now,
		newID:    utils.NewID,
		content:  PlaceholderContent{},
		sink:     audit.NopSink{},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

/* ============================== Plumbing ================================ */

// pendingLog is an entry appended under the lock and mirrored to the sink after release.
type pendingLog struct {
	scope  models.AuditScope
	caseID string
	entry  models.AuditLog
}

// mutate runs fn under the lock, then forwards the produced log entry to the sink.
func (m *Manager) mutate(fn func() (*pendingLog, error)) error {
	p, err := func() (*pendingLog, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		return fn()
	}()
	if p != nil {
		m.sink.Record(p.scope, p.caseID, p.entry)
		m.log.Debugw("log appended", "scope", p.scope, "case", p.caseID, "action", p.entry.Action)
	}
	return err
}

func actorName(actor *models.User) string {
	if actor == nil {
		return systemActor
	}
	return actor.Name
}

func (m *Manager) newLog(user, action, details string, category models.LogCategory) models.AuditLog {
	return models.AuditLog{
		ID:        m.newID("log"),
		User:      user,
		Action:    action,
		Details:   details,
		Timestamp: m.now(),
		Category:  category,
	}
}

// appendSystemLog prepends to the firm-wide log. Caller holds the lock.
func (m *Manager) appendSystemLog(actor *models.User, action, details string, category models.LogCategory) *pendingLog {
	entry := m.newLog(actorName(actor), action, details, category)
	m.systemLogs = append([]models.AuditLog{entry}, m.systemLogs...)
	return &pendingLog{scope: models.ScopeSystem, entry: entry}
}

// appendCaseLog prepends to a case audit trail. Caller holds the lock.
func (m *Manager) appendCaseLog(cs *models.Case, actor *models.User, action, details string) *pendingLog {
	entry := m.newLog(actor.Name, action, details, models.LogUserAction)
	cs.AuditLogs = append([]models.AuditLog{entry}, cs.AuditLogs...)
	return &pendingLog{scope: models.ScopeCase, caseID: cs.ID, entry: entry}
}

func (m *Manager) findCase(id string) *models.Case {
	for _, c := range m.cases {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *Manager) findUser(id string) *models.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *Manager) findUserByEmail(email string) *models.User {
	email = strings.TrimSpace(email)
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

/* =============================== Queries ================================ */

// Snapshot is a read-only copy of everything a signed-in viewer may see.
type Snapshot struct {
	Users         []models.User         `json:"users"`
	Cases         []models.Case         `json:"cases"`
	SystemLogs    []models.AuditLog     `json:"system_logs"`
	Notifications []models.Notification `json:"notifications"`
	Settings      models.Settings       `json:"settings"`
}

// Snapshot is taken under a single lock so the collections agree with each other.
func (m *Manager) Snapshot(viewer models.User) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Users:         make([]models.User, 0, len(m.users)),
		Cases:         m.visibleCases(viewer),
		SystemLogs:    append([]models.AuditLog{}, m.systemLogs...),
		Notifications: append([]models.Notification{}, m.notifications...),
		Settings:      m.settings,
	}
	for _, u := range m.users {
		snap.Users = append(snap.Users, *u)
	}
	return snap
}

// canSee is the role-based visibility rule: staff see every case, clients only their own.
func canSee(viewer models.User, cs *models.Case) bool {
	return viewer.Role.IsStaff() || cs.Client.ID == viewer.ID
}

// Cases returns the cases visible to viewer, newest first.
func (m *Manager) Cases(viewer models.User) []models.Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleCases(viewer)
}

func (m *Manager) visibleCases(viewer models.User) []models.Case {
	out := make([]models.Case, 0, len(m.cases))
	for _, c := range m.cases {
		if canSee(viewer, c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Case returns one case if viewer may see it. Hidden cases report ErrCaseNotFound.
func (m *Manager) Case(viewer models.User, id string) (models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs := m.findCase(id)
	if cs == nil || !canSee(viewer, cs) {
		return models.Case{}, ErrCaseNotFound
	}
	return cs.Clone(), nil
}

// CaseCount is the number of cases in the firm regardless of visibility.
func (m *Manager) CaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cases)
}

func (m *Manager) Users() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out
}

// Lawyers lists the users a case may be assigned to.
func (m *Manager) Lawyers() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == models.RoleLawyer {
			out = append(out, *u)
		}
	}
	return out
}

func (m *Manager) UserByID(id string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findUser(id); u != nil {
		return *u, true
	}
	return models.User{}, false
}

// UserByEmail looks a user up case-insensitively.
func (m *Manager) UserByEmail(email string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findUserByEmail(email); u != nil {
		return *u, true
	}
	return models.User{}, false
}

// SystemLogs returns the firm-wide log, newest first.
func (m *Manager) SystemLogs() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditLog, len(m.systemLogs))
	copy(out, m.systemLogs)
	return out
}

func (m *Manager) Settings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}
