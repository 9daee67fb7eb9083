package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions.
const (
	AuditCreate       = "CREATE"
	AuditUpdate       = "UPDATE"
	AuditStatusChange = "STATUS_CHANGE"
	AuditForceClose   = "FORCE_CLOSE"
	AuditConsolidate  = "CONSOLIDATE"
	AuditDelete       = "DELETE"
)

// AuditLogEntry is an append-only record of a tracked mutation.
// Writing one is best-effort: a failed append is logged and dropped,
// never propagated into the primary operation.
type AuditLogEntry struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Action     string         `json:"action" gorm:"size:50;not null"`
	TargetType string         `json:"target_type" gorm:"size:50;not null;index"`
	TargetID   string         `json:"target_id" gorm:"size:64;index"`
	Details    datatypes.JSON `json:"details" gorm:"type:jsonb"`
	ActorID    string         `json:"actor_id" gorm:"size:128"`
	CreatedAt  time.Time      `json:"created_at"`
}
