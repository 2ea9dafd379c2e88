package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"recon-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserName    string
	Action      models.AuditAction
	Description string
	Detail      any
}

// Recorder appends audit rows. A nil *Recorder records nothing.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) WriteLog(ctx context.Context, opts LogOptions) error {
	if r == nil {
		return nil
	}

	detail := "null"
	if opts.Detail != nil {
		if b, err := json.Marshal(opts.Detail); err == nil {
			detail = string(b)
		}
	}

	log := models.AuditLog{
		UserName:    opts.UserName,
		Action:      opts.Action,
		Description: opts.Description,
		Detail:      detail,
	}
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

type ListFilter struct {
	UserName string
	Action   models.AuditAction
	Limit    int
}

// List returns the newest rows first. A nil *Recorder lists nothing.
func (r *Recorder) List(ctx context.Context, f ListFilter) ([]models.AuditLog, error) {
	if r == nil {
		return []models.AuditLog{}, nil
	}

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.UserName != "" {
		q = q.Where("user_name = ?", f.UserName)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit log okunamadı: %w", err)
	}
	return logs, nil
}
