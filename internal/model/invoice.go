package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is issued once, when a contract is approved. It is never
// deleted; cancelling the contract cancels unpaid invoices instead.
type Invoice struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	InvoiceNumber string        `gorm:"column:invoice_number;uniqueIndex" json:"invoice_number"`
	ContractID    uint          `gorm:"column:contract_id;index;not null" json:"contract_id"`
	ClientID      uint          `gorm:"column:client_id;index;not null" json:"client_id"`
	TotalAmount   float64       `gorm:"column:total_amount" json:"total_amount"`
	Currency      string        `gorm:"column:currency;default:'AED'" json:"currency"`
	DueDate       time.Time     `gorm:"column:due_date" json:"due_date"`
	Status        InvoiceStatus `gorm:"column:status;index;default:'PENDING'" json:"status"`
	CreatedAt     time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
