package models

import "time"

type AuditAction string

const (
	AuditActionExport        AuditAction = "export"
	AuditActionExportFailed  AuditAction = "export_failed"
	AuditActionUserCreate    AuditAction = "user_create"
	AuditActionAdminRegister AuditAction = "admin_register"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Kim yaptı?
	UserName string `gorm:"size:100;index" json:"user_name"`

	Action AuditAction `gorm:"size:30;index" json:"action"`

	// Kısa özet
	Description string `gorm:"size:255" json:"description"`

	// İşlemin ayrıntısı (JSON), örn. export sonucu
	Detail string `gorm:"type:text" json:"detail"`
}
