package models

import "time"

// Bill consolidates delivered invoices of one client into a single
// billing document. Its totals are the sum of the source invoices'
// totals; tariffs are never recomputed at this level.
type Bill struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ClientID uint   `json:"client_id" gorm:"index;not null"`
	Client   Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	Subject   string     `json:"subject" gorm:"not null"`
	IssueDate time.Time  `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
	Notes     string     `json:"notes"`

	TotalAmount int64 `json:"total_amount"`
	TotalCost   int64 `json:"total_cost"`

	Invoices []Invoice `json:"invoices" gorm:"foreignKey:BillID"`

	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}
