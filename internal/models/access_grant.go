package models

import (
	"time"
)

// AccessGrant represents a time-boxed grant a patient gives another user to
// read their record. A grant is active while now is within [StartsAt, EndsAt];
// expiry is evaluated at query time, there is no background sweep.
type AccessGrant struct {
	BaseModel
	PatientUserID string    `gorm:"size:36;index;not null" json:"patientUserId"`
	GrantedUserID string    `gorm:"size:36;index;not null" json:"grantedUserId"`
	StartsAt      time.Time `gorm:"not null" json:"startsAt"`
	EndsAt        time.Time `gorm:"not null" json:"endsAt"`

	// Relations
	Patient     User `gorm:"foreignKey:PatientUserID" json:"-"`
	GrantedUser User `gorm:"foreignKey:GrantedUserID" json:"-"`
}

// ActiveAt reports whether the grant covers the given instant.
func (g *AccessGrant) ActiveAt(t time.Time) bool {
	return !t.Before(g.StartsAt) && !t.After(g.EndsAt)
}
