package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

/* ============================================================================
   Helpers
   ============================================================================ */

type fixedContent struct{}

func (fixedContent) Placeholder(name string, version int) (string, string) {
	return "1.0 MB", fmt.Sprintf("%s v%d", name, version)
}

// recordingSink collects mirrored log entries.
type recordingSink struct {
	mu      sync.Mutex
	entries []models.AuditLog
	scopes  []models.AuditScope
}

func (s *recordingSink) Record(scope models.AuditScope, _ string, e models.AuditLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = append(s.scopes, scope)
	s.entries = append(s.entries, e)
}

var (
	admin  = models.User{ID: "a1", Name: "Admin User", Email: "admin@acelegalpartnerssl.com", Role: models.RoleAdmin, Status: models.UserActive}
	lawyer = models.User{ID: "L1", Name: "Jane Lawyer", Email: "jane@acelegal.test", Role: models.RoleLawyer, Status: models.UserActive}
	clerk  = models.User{ID: "s1", Name: "Sam Secretary", Email: "sam@acelegal.test", Role: models.RoleSecretary, Status: models.UserActive}
	pinned = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
)

// newTestManager seeds staff users, pins the clock and uses sequential ids.
func newTestManager(t *testing.T, opts ...Option) (*Manager, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	var mu sync.Mutex
	seq := 0
	base := []Option{
		WithUsers(admin, lawyer, clerk),
		WithClock(func() time.Time { return pinned }),
		WithIDs(func(prefix string) string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("%s-%d", prefix, seq)
		}),
		WithContentSource(fixedContent{}),
		WithSink(sink),
	}
	return New(append(base, opts...)...), sink
}

func mustCase(t *testing.T, m *Manager, title, client string) models.Case {
	t.Helper()
	cs, err := m.CreateCase(&lawyer, title, client, lawyer.ID)
	require.NoError(t, err)
	return cs
}

/* ============================================================================
   Create case
   ============================================================================ */

func TestCreateCase_NumbersAndDefaults(t *testing.T) {
	m, sink := newTestManager(t)

	first := mustCase(t, m, "Smith v. Jones", "John Smith")
	second := mustCase(t, m, "Estate of Doe", "Mary Doe")

	assert.Equal(t, "ALP-2025-001", first.CaseNumber)
	assert.Equal(t, "ALP-2025-002", second.CaseNumber)
	assert.Equal(t, models.CasePending, first.Status)
	assert.False(t, first.LegalHold)
	assert.Empty(t, first.Documents)
	assert.Empty(t, first.AuditLogs)
	assert.Empty(t, first.KeyDates)
	assert.Empty(t, first.InternalNotes)

	// newest first
	cases := m.Cases(admin)
	require.Len(t, cases, 2)
	assert.Equal(t, second.ID, cases[0].ID)

	// client account synthesized from the name
	client, ok := m.UserByID(first.Client.ID)
	require.True(t, ok)
	assert.Equal(t, "john.smith@example.com", client.Email)
	assert.Equal(t, models.RoleClient, client.Role)

	logs := m.SystemLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "Case Created", logs[0].Action)
	assert.Equal(t, `New case "Estate of Doe" was created.`, logs[0].Details)
	assert.Equal(t, lawyer.Name, logs[0].User)
	assert.Len(t, sink.entries, 2)
}

func TestCreateCase_UnknownLawyer(t *testing.T) {
	m, sink := newTestManager(t)
	before := len(m.Users())

	_, err := m.CreateCase(&admin, "Ghost", "Nobody", "missing")
	assert.ErrorIs(t, err, ErrUnknownLawyer)

	_, err = m.CreateCase(&admin, "Ghost", "Nobody", clerk.ID)
	assert.ErrorIs(t, err, ErrNotALawyer)

	assert.Zero(t, m.CaseCount())
	assert.Len(t, m.Users(), before)
	assert.Empty(t, m.SystemLogs())
	assert.Empty(t, sink.entries)
}

/* ============================================================================
   Documents
   ============================================================================ */

func TestUploadDocument_VersionsIncrease(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	for want := 1; want <= 3; want++ {
		updated, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{
			Name: "Contract.pdf", Type: models.DocPDF, Status: models.DocDraft,
		})
		require.NoError(t, err)
		assert.Equal(t, want, updated.Documents[0].Version)
	}

	// another name starts its own sequence
	updated, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{Name: "Brief.docx", Type: models.DocWord, Status: models.DocDraft})
	require.NoError(t, err)
	doc := updated.Documents[0]
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "1.0 MB", doc.Size)
	assert.Equal(t, "Brief.docx v1", doc.Content)
	assert.Equal(t, "2025-03-14", doc.UploadDate)
	assert.Equal(t, lawyer.Name, doc.UploadedBy)

	require.Len(t, updated.AuditLogs, 4)
	assert.Equal(t, "Uploaded", updated.AuditLogs[0].Action)
	assert.Equal(t, "Brief.docx (v1)", updated.AuditLogs[0].Details)
	assert.Equal(t, "Contract.pdf (v3)", updated.AuditLogs[1].Details)
}

func TestUploadDocument_KeepsProvidedContent(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	updated, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{
		Name: "Photo.png", Type: models.DocImage, Status: models.DocFinal,
		Size: "0.2 MB", Content: "photo of the site", StorageKey: "case/x/photo.png",
		Tags: []string{"evidence"},
	})
	require.NoError(t, err)
	doc := updated.Documents[0]
	assert.Equal(t, "0.2 MB", doc.Size)
	assert.Equal(t, "photo of the site", doc.Content)
	assert.Equal(t, "case/x/photo.png", doc.StorageKey)
	assert.Equal(t, []string{"evidence"}, doc.Tags)
}

func TestUploadDocument_Failures(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	_, err := m.UploadDocument(nil, cs.ID, DocumentInput{Name: "a.pdf"})
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.UploadDocument(&lawyer, "missing", DocumentInput{Name: "a.pdf"})
	assert.ErrorIs(t, err, ErrCaseNotFound)

	assert.Empty(t, m.Notifications())
	got, err := m.Case(admin, cs.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Documents)
	assert.Empty(t, got.AuditLogs)
}

func TestUpdateDocumentStatus(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")
	cs, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{Name: "Contract.pdf", Status: models.DocDraft})
	require.NoError(t, err)
	docID := cs.Documents[0].ID

	updated, err := m.UpdateDocumentStatus(&clerk, cs.ID, docID, models.DocFinal)
	require.NoError(t, err)
	assert.Equal(t, models.DocFinal, updated.Documents[0].Status)
	assert.Equal(t, "Updated Status", updated.AuditLogs[0].Action)
	assert.Equal(t, "Set status of Contract.pdf to Final", updated.AuditLogs[0].Details)

	_, err = m.UpdateDocumentStatus(&clerk, cs.ID, "nope", models.DocArchived)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	got, _ := m.Case(admin, cs.ID)
	assert.Len(t, got.AuditLogs, 2)
}

/* ============================================================================
   Key dates, notes, legal hold
   ============================================================================ */

func TestAddKeyDate_StaysSorted(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	dates := []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	var err error
	for i, d := range dates {
		cs, err = m.AddKeyDate(&lawyer, cs.ID, d, fmt.Sprintf("event %d", i))
		require.NoError(t, err)
		for j := 1; j < len(cs.KeyDates); j++ {
			assert.False(t, cs.KeyDates[j].Date.Before(cs.KeyDates[j-1].Date))
		}
	}
	assert.Len(t, cs.KeyDates, len(dates))
	assert.Equal(t, "event 4 on 2024-12-31", cs.AuditLogs[0].Details)
	assert.Equal(t, "Added Key Date", cs.AuditLogs[0].Action)
}

func TestAddInternalNote(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	_, err := m.AddInternalNote(nil, cs.ID, "nobody is signed in")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.AddInternalNote(&lawyer, cs.ID, "first")
	require.NoError(t, err)
	cs, err = m.AddInternalNote(&clerk, cs.ID, "second")
	require.NoError(t, err)

	require.Len(t, cs.InternalNotes, 2)
	assert.Equal(t, "second", cs.InternalNotes[0].Content)
	assert.Equal(t, clerk.Name, cs.InternalNotes[0].Author)
	assert.Equal(t, "Added a new confidential note.", cs.AuditLogs[0].Details)
	assert.Len(t, cs.AuditLogs, 2)
}

func TestToggleLegalHold_Twice(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")
	before := len(m.SystemLogs())

	on, err := m.ToggleLegalHold(&admin, cs.ID)
	require.NoError(t, err)
	assert.True(t, on.LegalHold)

	off, err := m.ToggleLegalHold(&admin, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, cs.LegalHold, off.LegalHold)

	logs := m.SystemLogs()
	require.Len(t, logs, before+2)
	assert.Equal(t, "Legal hold was disabled for case: Smith v. Jones.", logs[0].Details)
	assert.Equal(t, "Legal hold was enabled for case: Smith v. Jones.", logs[1].Details)
	assert.Equal(t, models.LogSystem, logs[0].Category)

	_, err = m.ToggleLegalHold(&admin, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)
	assert.Len(t, m.SystemLogs(), before+2)
}

/* ============================================================================
   Visibility
   ============================================================================ */

func TestCases_ClientSeesOnlyOwn(t *testing.T) {
	m, _ := newTestManager(t)
	mine := mustCase(t, m, "Mine", "John Smith")
	other := mustCase(t, m, "Other", "Mary Doe")

	client, ok := m.UserByID(mine.Client.ID)
	require.True(t, ok)

	visible := m.Cases(client)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)

	_, err := m.Case(client, other.ID)
	assert.ErrorIs(t, err, ErrCaseNotFound)

	for _, staff := range []models.User{admin, lawyer, clerk} {
		assert.Len(t, m.Cases(staff), 2, staff.Role)
	}
	assert.Len(t, m.Snapshot(client).Cases, 1)
}

func TestCase_ReturnsCopies(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")
	cs, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{Name: "a.pdf", Tags: []string{"x"}})
	require.NoError(t, err)

	cs.Documents[0].Tags[0] = "mutated"
	cs.Title = "mutated"

	fresh, err := m.Case(admin, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smith v. Jones", fresh.Title)
	assert.Equal(t, "x", fresh.Documents[0].Tags[0])
}

/* ============================================================================
   Notifications
   ============================================================================ */

func TestNotifications_CappedAtTen(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	for i := 0; i < MaxNotifications+1; i++ {
		_, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{Name: fmt.Sprintf("doc-%02d.pdf", i)})
		require.NoError(t, err)
	}

	ns := m.Notifications()
	require.Len(t, ns, MaxNotifications)
	assert.Equal(t, `Jane Lawyer uploaded "doc-10.pdf"`, ns[0].Message)
	for _, n := range ns {
		assert.NotContains(t, n.Message, "doc-00.pdf")
		assert.Equal(t, cs.ID, n.CaseID)
	}
	assert.Equal(t, MaxNotifications, m.UnreadCount())

	logsBefore := len(m.SystemLogs())
	m.MarkNotificationsRead()
	m.MarkNotificationsRead()
	assert.Zero(t, m.UnreadCount())
	assert.Len(t, m.SystemLogs(), logsBefore)
}

/* ============================================================================
   Users and settings
   ============================================================================ */

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	m, _ := newTestManager(t)

	u, err := m.RegisterUser(NewUser{Name: "New Person", Email: "new@acelegal.test", Role: models.RoleClient, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, models.UserInvited, u.Status)
	assert.Equal(t, "hash", u.PasswordHash)

	count := len(m.Users())
	_, err = m.RegisterUser(NewUser{Name: "Copy", Email: "NEW@AceLegal.test", Role: models.RoleClient})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Len(t, m.Users(), count)

	logs := m.SystemLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "User Signed Up", logs[0].Action)
	assert.Equal(t, "New user new@acelegal.test registered with role Client. Account requires approval.", logs[0].Details)
	assert.Equal(t, "System", logs[0].User)
}

func TestInviteUser_AllowsExistingEmail(t *testing.T) {
	m, _ := newTestManager(t)
	count := len(m.Users())

	u, err := m.InviteUser(&admin, lawyer.Email, models.RoleSecretary)
	require.NoError(t, err)
	assert.Equal(t, "Invited User", u.Name)
	assert.Equal(t, models.UserInvited, u.Status)
	assert.Len(t, m.Users(), count+1)

	logs := m.SystemLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Sent invitation to jane@acelegal.test with role Secretary.", logs[0].Details)
	assert.Equal(t, admin.Name, logs[0].User)
}

func TestUpdateUser(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")
	before := len(m.SystemLogs())

	role := models.RoleAdmin
	status := models.UserInactive
	u, err := m.UpdateUser(&admin, lawyer.ID, models.UserPatch{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, models.UserInactive, u.Status)

	logs := m.SystemLogs()
	require.Len(t, logs, before+1)
	assert.Equal(t, "Changed role to Admin, status to Inactive for jane@acelegal.test.", logs[0].Details)

	// embedded copies follow the account
	got, _ := m.Case(admin, cs.ID)
	assert.Equal(t, models.UserInactive, got.AssignedLawyer.Status)

	_, err = m.UpdateUser(&admin, lawyer.ID, models.UserPatch{})
	require.NoError(t, err)
	_, err = m.UpdateUser(&admin, "missing", models.UserPatch{Role: &role})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Len(t, m.SystemLogs(), before+1)
}

func TestUpdateSettings(t *testing.T) {
	m, sink := newTestManager(t)

	name := "Ace Legal LLP"
	versioning := false
	theme := models.ThemeDark
	s, err := m.UpdateSettings(&admin, models.SettingsPatch{FirmName: &name, Versioning: &versioning, Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, "Ace Legal LLP", s.FirmName)
	assert.False(t, s.Versioning)
	assert.Equal(t, models.ThemeDark, m.Settings().Theme)
	assert.Equal(t, models.DefaultSettings().FirmAddress, s.FirmAddress)

	logs := m.SystemLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Changed application settings: theme, firmName, versioning.", logs[0].Details)
	assert.Equal(t, models.LogSystem, logs[0].Category)
	assert.Equal(t, []models.AuditScope{models.ScopeSystem}, sink.scopes)

	_, err = m.UpdateSettings(&admin, models.SettingsPatch{})
	require.NoError(t, err)
	assert.Len(t, m.SystemLogs(), 1)
}

/* ============================================================================
   Concurrency
   ============================================================================ */

func TestConcurrentUploads_UniqueVersions(t *testing.T) {
	m, _ := newTestManager(t)
	cs := mustCase(t, m, "Smith v. Jones", "John Smith")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.UploadDocument(&lawyer, cs.ID, DocumentInput{Name: "Contract.pdf"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Case(admin, cs.ID)
	require.NoError(t, err)
	require.Len(t, got.Documents, n)
	seen := map[int]bool{}
	for _, d := range got.Documents {
		assert.False(t, seen[d.Version], "duplicate version %d", d.Version)
		seen[d.Version] = true
	}
	for v := 1; v <= n; v++ {
		assert.True(t, seen[v])
	}
	assert.Len(t, got.AuditLogs, n)
}
