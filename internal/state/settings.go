package state

import (
	"fmt"
	"strings"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

// UpdateSettings merges the provided fields and logs their names.
func (m *Manager) UpdateSettings(actor *models.User, patch models.SettingsPatch) (models.Settings, error) {
	var out models.Settings
	err := m.mutate(func() (*pendingLog, error) {
		var fields []string
		if patch.Theme != nil {
			m.settings.Theme = *patch.Theme
			fields = append(fields, "theme")
		}
		if patch.FirmName != nil {
			m.settings.FirmName = *patch.FirmName
			fields = append(fields, "firmName")
		}
		if patch.FirmAddress != nil {
			m.settings.FirmAddress = *patch.FirmAddress
			fields = append(fields, "firmAddress")
		}
		if patch.RetentionPeriod != nil {
			m.settings.RetentionPeriod = *patch.RetentionPeriod
			fields = append(fields, "retentionPeriod")
		}
		if patch.Versioning != nil {
			m.settings.Versioning = *patch.Versioning
			fields = append(fields, "versioning")
		}
		if patch.IPWhitelist != nil {
			m.settings.IPWhitelist = *patch.IPWhitelist
			fields = append(fields, "ipWhitelist")
		}
		out = m.settings
		if len(fields) == 0 {
			return nil, nil
		}
		return m.appendSystemLog(actor, "Updated Settings",
			fmt.Sprintf("Changed application settings: %s.", strings.Join(fields, ", ")), models.LogSystem), nil
	})
	return out, err
}

/* ============================ Notifications ============================= */

// pushNotification prepends and evicts beyond MaxNotifications. Caller holds the lock.
func (m *Manager) pushNotification(message, caseID string) {
	n := models.Notification{
		ID:        m.newID("notif"),
		Message:   message,
		Timestamp: m.now(),
		CaseID:    caseID,
	}
	m.notifications = append([]models.Notification{n}, m.notifications...)
	if len(m.notifications) > MaxNotifications {
		m.notifications = m.notifications[:MaxNotifications]
	}
}

// Notify adds a notification for a case without touching any log.
func (m *Manager) Notify(message, caseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushNotification(message, caseID)
}

// Notifications returns the retained notifications, newest first.
func (m *Manager) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification{}, m.notifications...)
}

// UnreadCount is the number of notifications not yet marked read.
func (m *Manager) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, x := range m.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// MarkNotificationsRead marks every notification read. Calling it again is a no-op.
func (m *Manager) MarkNotificationsRead() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		m.notifications[i].Read = true
	}
}
