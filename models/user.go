package models

import (
	"time"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Username    string    `gorm:"uniqueIndex;not null;size:30" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    *string   `json:"-"` // nil for accounts created through Google sign-in
	DisplayName string    `gorm:"size:100" json:"displayName"`
	Avatar      string    `json:"avatar"`
	GoogleID    *string   `gorm:"uniqueIndex" json:"-"`
	Provider    string    `gorm:"size:20;not null;default:'email'" json:"provider"`

	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
