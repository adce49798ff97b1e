// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"encoding/json"
	"time"
)

// AuditLog records security-relevant actions. AccountID plus AccountRole
// identify the acting account; both are nil for anonymous failures (e.g. a
// login attempt for an unknown email).
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AccountID    *uint           `gorm:"index:idx_audit_account_id" json:"account_id,omitempty"`
	AccountRole  *string         `gorm:"size:20;index:idx_audit_account_role" json:"account_role,omitempty"`
	Action       string          `gorm:"size:50;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionLoginSuccess       = "login_success"
	AuditActionLoginFailed        = "login_failed"
	AuditActionGoogleLoginSuccess = "google_login_success"
	AuditActionGoogleLoginFailed  = "google_login_failed"
	AuditActionAccountProvisioned = "account_provisioned"
	AuditActionIdentityLinked     = "identity_linked"
	AuditActionProfileUpdated     = "profile_updated"
	AuditActionBookingCreated     = "booking_created"
	AuditActionBookingUpdated     = "booking_updated"
	AuditActionBookingCancelled   = "booking_cancelled"
	AuditActionReviewCreated      = "review_created"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	AccountID     *uint
	AccountRole   *string
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
