package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the permission level of a staff member.
type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleOperations Role = "OPERATIONS"
	RoleAccounting Role = "ACCOUNTING"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleOperations, RoleAccounting:
		return true
	}
	return false
}

type Staff struct {
	Id        string `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name" gorm:"not null"`
	LastName  string `json:"last_name" gorm:"not null"`
	Password  []byte `json:"-" gorm:"not null"`
	Email     string `json:"email" gorm:"unique;not null"`
	Role      Role   `json:"role" gorm:"type:VARCHAR(20);not null"`
}

func (staff *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	staff.Id = uuid.NewString()
	return
}

func (staff *Staff) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	staff.Password = hashedPassword
}

func (staff *Staff) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(staff.Password, []byte(password))
}
