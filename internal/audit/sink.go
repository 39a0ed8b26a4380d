package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

// Sink receives every audit and system log entry once it has been appended in memory.
type Sink interface {
	Record(scope models.AuditScope, caseID string, entry models.AuditLog)
}

// NopSink drops entries. Used when no database is configured.
type NopSink struct{}

func (NopSink) Record(models.AuditScope, string, models.AuditLog) {}

// GormSink mirrors entries into the audit_records table.
// Writes are best-effort: a failure is logged and never reaches the caller.
type GormSink struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewGormSink(db *gorm.DB, log *zap.SugaredLogger) *GormSink {
	return &GormSink{db: db, log: log, timeout: 3 * time.Second}
}

func (s *GormSink) Record(scope models.AuditScope, caseID string, entry models.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rec := models.AuditRecord{
		ID:        entry.ID,
		Scope:     scope,
		CaseID:    caseID,
		Actor:     entry.User,
		Action:    entry.Action,
		Details:   entry.Details,
		Category:  entry.Category,
		CreatedAt: entry.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.log.Warnw("audit mirror write failed", "id", entry.ID, "action", entry.Action, "error", err)
	}
}

// CaseHistory returns the mirrored entries of one case, newest first.
func (s *GormSink) CaseHistory(ctx context.Context, caseID string) ([]models.AuditRecord, error) {
	var out []models.AuditRecord
	err := s.db.WithContext(ctx).
		Where("scope = ? AND case_id = ?", models.ScopeCase, caseID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// SystemHistory returns the mirrored system log, newest first.
func (s *GormSink) SystemHistory(ctx context.Context) ([]models.AuditRecord, error) {
	var out []models.AuditRecord
	err := s.db.WithContext(ctx).
		Where("scope = ?", models.ScopeSystem).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
