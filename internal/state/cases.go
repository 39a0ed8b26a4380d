package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
)

/* ============================== Create case ============================= */

// CreateCase opens a Pending case for a new client and assigns it to a lawyer.
// The client account is created alongside the case.
func (m *Manager) CreateCase(actor *models.User, title, clientName, assignedLawyerID string) (models.Case, error) {
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		lawyer := m.findUser(assignedLawyerID)
		if lawyer == nil {
			return nil, ErrUnknownLawyer
		}
		if lawyer.Role != models.RoleLawyer {
			return nil, ErrNotALawyer
		}

		now := m.now()
		clientID := m.newID("client")
		client := &models.User{
			ID:        clientID,
			Name:      strings.TrimSpace(clientName),
			Email:     utils.ClientEmail(clientName),
			Role:      models.RoleClient,
			Status:    models.UserActive,
			AvatarURL: utils.AvatarURL(clientID),
		}
		m.users = append(m.users, client)

		cs := &models.Case{
			ID:             m.newID("case"),
			CaseNumber:     utils.CaseNumber(now.Year(), len(m.cases)+1),
			Title:          strings.TrimSpace(title),
			Client:         *client,
			AssignedLawyer: *lawyer,
			Status:         models.CasePending,
			LegalHold:      false,
			CaseType:       "General",
			Documents:      []models.DocumentFile{},
			AuditLogs:      []models.AuditLog{},
			KeyDates:       []models.KeyDate{},
			InternalNotes:  []models.InternalNote{},
			CreatedAt:      now,
		}
		m.cases = append([]*models.Case{cs}, m.cases...)
		out = cs.Clone()

		return m.appendSystemLog(actor, "Case Created",
			fmt.Sprintf(`New case "%s" was created.`, cs.Title), models.LogUserAction), nil
	})
	return out, err
}

/* =============================== Documents ============================== */

// DocumentInput describes an upload. Size and Content are optional; when empty the
// manager's ContentSource supplies placeholders.
type DocumentInput struct {
	Name       string
	Type       models.DocumentType
	Tags       []string
	Status     models.DocumentStatus
	Size       string
	Content    string
	StorageKey string
}

// nextVersion is the version the next upload of name into the case receives.
func nextVersion(cs *models.Case, name string) int {
	latest := 0
	for _, d := range cs.Documents {
		if d.Name == name && d.Version > latest {
			latest = d.Version
		}
	}
	return latest + 1
}

// UploadDocument adds a new version of a named document to a case and notifies the firm.
func (m *Manager) UploadDocument(actor *models.User, caseID string, in DocumentInput) (models.Case, error) {
	if actor == nil {
		return models.Case{}, ErrNoSession
	}
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		cs := m.findCase(caseID)
		if cs == nil {
			return nil, ErrCaseNotFound
		}

		version := nextVersion(cs, in.Name)
		size, content := in.Size, in.Content
		if size == "" || content == "" {
			phSize, phContent := m.content.Placeholder(in.Name, version)
			if size == "" {
				size = phSize
			}
			if content == "" {
				content = phContent
			}
		}

		now := m.now()
		doc := models.DocumentFile{
			ID:         m.newID("doc"),
			Name:       in.Name,
			Type:       in.Type,
			Size:       size,
			UploadedBy: actor.Name,
			UploadDate: now.Format("2006-01-02"),
			Version:    version,
			Content:    content,
			Status:     in.Status,
			Tags:       slices.Clone(in.Tags),
			StorageKey: in.StorageKey,
		}
		cs.Documents = append([]models.DocumentFile{doc}, cs.Documents...)

		p := m.appendCaseLog(cs, actor, "Uploaded", fmt.Sprintf("%s (v%d)", doc.Name, version))
		m.pushNotification(fmt.Sprintf(`%s uploaded "%s"`, actor.Name, doc.Name), cs.ID)
		out = cs.Clone()
		return p, nil
	})
	return out, err
}

// UpdateDocumentStatus changes the review status of one document version.
func (m *Manager) UpdateDocumentStatus(actor *models.User, caseID, documentID string, status models.DocumentStatus) (models.Case, error) {
	if actor == nil {
		return models.Case{}, ErrNoSession
	}
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		cs := m.findCase(caseID)
		if cs == nil {
			return nil, ErrCaseNotFound
		}
		idx := slices.IndexFunc(cs.Documents, func(d models.DocumentFile) bool { return d.ID == documentID })
		if idx < 0 {
			return nil, ErrDocumentNotFound
		}
		cs.Documents[idx].Status = status

		p := m.appendCaseLog(cs, actor, "Updated Status",
			fmt.Sprintf("Set status of %s to %s", cs.Documents[idx].Name, status))
		out = cs.Clone()
		return p, nil
	})
	return out, err
}

// Document returns one document of a case visible to viewer.
func (m *Manager) Document(viewer models.User, caseID, documentID string) (models.DocumentFile, error) {
	cs, err := m.Case(viewer, caseID)
	if err != nil {
		return models.DocumentFile{}, err
	}
	for _, d := range cs.Documents {
		if d.ID == documentID {
			return d, nil
		}
	}
	return models.DocumentFile{}, ErrDocumentNotFound
}

/* ========================== Key dates and notes ========================= */

// AddKeyDate records a deadline; the case's key dates stay sorted by date.
func (m *Manager) AddKeyDate(actor *models.User, caseID string, date time.Time, description string) (models.Case, error) {
	if actor == nil {
		return models.Case{}, ErrNoSession
	}
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		cs := m.findCase(caseID)
		if cs == nil {
			return nil, ErrCaseNotFound
		}
		cs.KeyDates = append(cs.KeyDates, models.KeyDate{
			ID:          m.newID("kd"),
			Date:        date,
			Description: description,
		})
		slices.SortStableFunc(cs.KeyDates, func(a, b models.KeyDate) int { return a.Date.Compare(b.Date) })

		p := m.appendCaseLog(cs, actor, "Added Key Date",
			fmt.Sprintf("%s on %s", description, date.Format("2006-01-02")))
		out = cs.Clone()
		return p, nil
	})
	return out, err
}

// AddInternalNote prepends a confidential note authored by actor.
func (m *Manager) AddInternalNote(actor *models.User, caseID, content string) (models.Case, error) {
	if actor == nil {
		return models.Case{}, ErrNoSession
	}
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		cs := m.findCase(caseID)
		if cs == nil {
			return nil, ErrCaseNotFound
		}
		note := models.InternalNote{
			ID:        m.newID("note"),
			Author:    actor.Name,
			Content:   content,
			Timestamp: m.now(),
		}
		cs.InternalNotes = append([]models.InternalNote{note}, cs.InternalNotes...)

		p := m.appendCaseLog(cs, actor, "Added Internal Note", "Added a new confidential note.")
		out = cs.Clone()
		return p, nil
	})
	return out, err
}

/* ============================== Legal hold ============================== */

// ToggleLegalHold flips the legal-hold flag and records it in the system log.
// The returned case is the refreshed copy for whoever is displaying it.
func (m *Manager) ToggleLegalHold(actor *models.User, caseID string) (models.Case, error) {
	var out models.Case
	err := m.mutate(func() (*pendingLog, error) {
		cs := m.findCase(caseID)
		if cs == nil {
			return nil, ErrCaseNotFound
		}
		cs.LegalHold = !cs.LegalHold

		verb := "disabled"
		if cs.LegalHold {
			verb = "enabled"
		}
		out = cs.Clone()
		return m.appendSystemLog(actor, "Legal Hold",
			fmt.Sprintf("Legal hold was %s for case: %s.", verb, cs.Title), models.LogSystem), nil
	})
	return out, err
}
