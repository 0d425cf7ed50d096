package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RolePatient Role = "patient"
)

// AllRoles is the closed set of roles known to the system.
var AllRoles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RolePatient}

// Gender enum
type Gender string

const (
	GenderUnspecified Gender = "unspecified"
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
)

// User represents a domain user in the system. Role-specific fields live in
// the 1:1 profile rows (PatientProfile, DoctorProfile, NurseProfile).
type User struct {
	BaseModel
	Email       string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName   string     `gorm:"size:100" json:"firstName"`
	LastName    string     `gorm:"size:100" json:"lastName"`
	Role        Role       `gorm:"size:20;default:'patient'" json:"role"`
	Gender      Gender     `gorm:"size:20;default:'unspecified'" json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	Gender      Gender     `json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// BloodType enum
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// Campus enum
type Campus string

const (
	CampusMain Campus = "main"
	CampusEast Campus = "east"
	CampusWest Campus = "west"
)

// PatientProfile holds the patient-specific fields of a user.
type PatientProfile struct {
	BaseModel
	UserID      string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	BodyWeight  *float64  `json:"bodyWeight,omitempty"` // kg
	BodyHeight  *float64  `json:"bodyHeight,omitempty"` // cm
	BloodType   BloodType `gorm:"size:5" json:"bloodType,omitempty"`
	Blacklisted bool      `gorm:"default:false" json:"blacklisted"`

	// Relations
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Vaccinations []Vaccination `gorm:"foreignKey:PatientUserID;references:UserID" json:"vaccinations,omitempty"`
	TestResults  []TestResult  `gorm:"foreignKey:PatientUserID;references:UserID" json:"testResults,omitempty"`
	Cases        []Case        `gorm:"foreignKey:PatientUserID;references:UserID" json:"cases,omitempty"`
	AccessGrants []AccessGrant `gorm:"foreignKey:PatientUserID;references:UserID" json:"accessGrants,omitempty"`
}

// DoctorProfile holds the doctor-specific fields of a user.
type DoctorProfile struct {
	BaseModel
	UserID         string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization string `gorm:"size:100" json:"specialization"`
	Campus         Campus `gorm:"size:20;default:'main'" json:"campus"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// NurseProfile holds the nurse-specific fields of a user.
type NurseProfile struct {
	BaseModel
	UserID string `gorm:"size:36;uniqueIndex;not null" json:"userId"`

	User           User            `gorm:"foreignKey:UserID" json:"-"`
	TriageRequests []TriageRequest `gorm:"foreignKey:NurseUserID;references:UserID" json:"triageRequests,omitempty"`
}
