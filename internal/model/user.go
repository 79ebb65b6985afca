package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a directory entry. The numeric ID is the storage key only; the UUID
// is the public identifier and is what token subjects and route params carry.
type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UUID         uuid.UUID `json:"uuid" gorm:"type:char(36);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:255;not null;index"`
	Email        string    `json:"email" gorm:"size:255;not null;index"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsAdmin      bool      `json:"is_adm" gorm:"default:false"`
	Module       string    `json:"module,omitempty" gorm:"size:255;index"`
	CreatedAt    time.Time `json:"created_on"`
	UpdatedAt    time.Time `json:"updated_on"`
}

// BeforeCreate assigns the public UUID before the row is inserted.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}
