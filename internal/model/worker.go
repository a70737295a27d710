package model

import "time"

type WorkerStatus string

const (
	WorkerStatusAvailable WorkerStatus = "AVAILABLE"
	WorkerStatusOffered   WorkerStatus = "OFFERED"
	WorkerStatusSponsored WorkerStatus = "SPONSORED"
	WorkerStatusExited    WorkerStatus = "EXITED"
)

// Worker is referenced by contracts but owned elsewhere; this service
// only reads it and flips its status as contracts move.
type Worker struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FullName    string       `gorm:"column:full_name" json:"full_name"`
	Nationality string       `gorm:"column:nationality" json:"nationality"`
	Profession  string       `gorm:"column:profession" json:"profession"`
	Status      WorkerStatus `gorm:"column:status;index;default:'AVAILABLE'" json:"status"`
	StatusNote  string       `gorm:"column:status_note" json:"status_note"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Worker) TableName() string { return "workers" }
