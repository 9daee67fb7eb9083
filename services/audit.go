package services

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"mediaops-backend/models"
)

// AuditSink appends audit entries best-effort: a failed write is
// logged and discarded so it can never affect the primary operation.
// It writes on its own session, outside any request transaction.
type AuditSink struct {
	DB *gorm.DB
}

func (a *AuditSink) Append(action, targetType, targetID, actorID string, details map[string]any) {
	if a == nil || a.DB == nil {
		return
	}
	var blob datatypes.JSON
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			blob = b
		}
	}
	entry := models.AuditLogEntry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    blob,
		ActorID:    actorID,
	}
	sess := a.DB.Session(&gorm.Session{NewDB: true})
	if err := sess.Create(&entry).Error; err != nil {
		log.Printf("audit append failed (%s %s/%s): %v", action, targetType, targetID, err)
	}
}
