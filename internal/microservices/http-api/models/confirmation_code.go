package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmationCode is the single live signup code of a user. Only the bcrypt hash is stored.
type ConfirmationCode struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	CodeHash  string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook to set UUID before creating a ConfirmationCode
func (c *ConfirmationCode) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Expired reports whether the code can no longer be exchanged at t.
func (c *ConfirmationCode) Expired(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}

func (ConfirmationCode) TableName() string {
	return "confirmation_codes"
}
