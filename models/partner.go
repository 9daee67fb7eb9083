package models

import "time"

// Partner is an outside contractor tasks are assigned to. Role is a
// free-form trade label ("editor", "designer", ...) matched against a
// generic pricing rule's target role at assignment time.
type Partner struct {
	Id          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Notes       string    `json:"notes"`
	Active      bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
