package models

import (
	"time"
	"vrbs/src/types"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"default:'admin'" json:"role,omitempty"`
	LastActive   time.Time `json:"last_active,omitempty"`

	types.Timestamps
}
