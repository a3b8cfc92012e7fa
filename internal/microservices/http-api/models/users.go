package models

import "time"

// User roles as persisted in the users.role column.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName  string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName   string    `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio        string    `gorm:"type:text;not null;default:''" json:"bio"`
	Role       string    `gorm:"size:20;not null;default:'user'" json:"role"` // user | moderator | admin
	IsVerified bool      `gorm:"not null;default:false" json:"-"`            // flipped on first successful token exchange
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
