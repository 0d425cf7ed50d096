package models

import (
	"time"
)

// RefreshToken is a persisted, revocable refresh token. Rotation and logout
// flip IsRevoked rather than deleting the row; expiry is checked at use.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"` // signed JWT, never sent back out
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
