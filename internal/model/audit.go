package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditEntry struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Action      string    `gorm:"column:action;index"`
	Description string    `gorm:"column:description"`
	ActorID     uint      `gorm:"column:actor_id;index"`
	RelatedID   uint      `gorm:"column:related_id"`
	RelatedType string    `gorm:"column:related_type"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (AuditEntry) TableName() string { return "audit_log" }
