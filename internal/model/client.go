package model

import "time"

type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "ACTIVE"
	ClientStatusSuspended ClientStatus = "SUSPENDED"
	ClientStatusClosed    ClientStatus = "CLOSED"
)

type Client struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	FullName   string       `gorm:"column:full_name" json:"full_name"`
	EmiratesID string       `gorm:"column:emirates_id" json:"emirates_id"`
	Phone      string       `gorm:"column:phone" json:"phone"`
	Email      string       `gorm:"column:email" json:"email"`
	Status     ClientStatus `gorm:"column:status;index;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
