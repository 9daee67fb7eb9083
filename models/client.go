package models

import "time"

// Client is a commissioning party. Every invoice belongs to exactly
// one client; the operations lead and accountant references drive the
// per-staff stats scoping and the permission checks.
type Client struct {
	Id               uint       `json:"id" gorm:"primaryKey"`
	CompanyName      string     `json:"company_name" gorm:"not null;unique"`
	Address          string     `json:"address"`
	Email            string     `json:"email"`
	PhoneNumber      string     `json:"phone_number"`
	ContactName      string     `json:"contact_name"`
	OperationsLeadID string     `json:"operations_lead_id" gorm:"index"`
	OperationsLead   *Staff     `json:"operations_lead,omitempty" gorm:"foreignKey:OperationsLeadID;references:Id"`
	AccountantID     string     `json:"accountant_id"`
	Accountant       *Staff     `json:"accountant,omitempty" gorm:"foreignKey:AccountantID;references:Id"`
	LastContactDate  *time.Time `json:"last_contact_date"`
	Notes            string     `json:"notes"`
	Active           bool       `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}
