package models

import (
	"time"
)

// ApprovalStatus represents the approval state of an appointment
type ApprovalStatus string

const (
	ApprovalWaiting  ApprovalStatus = "waiting"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDenied   ApprovalStatus = "denied"
)

// Appointment represents an appointment requested against a case.
// ApprovalStatus and Cancelled jointly define the observable state;
// Cancelled is terminal.
type Appointment struct {
	BaseModel
	CaseID           string         `gorm:"size:36;index;not null" json:"caseId"`
	RequestingUserID string         `gorm:"size:36;index;not null" json:"requestingUserId"`
	ScheduledAt      time.Time      `json:"scheduledAt"`
	Description      string         `gorm:"size:255" json:"description"`
	ApprovalStatus   ApprovalStatus `gorm:"size:20;default:'waiting'" json:"approvalStatus"`
	Attended         bool           `gorm:"default:false" json:"attended"`
	Cancelled        bool           `gorm:"default:false" json:"cancelled"`
	Version          int            `gorm:"default:1" json:"-"` // optimistic lock

	// Relations
	Case           Case              `gorm:"foreignKey:CaseID" json:"-"`
	RequestingUser User              `gorm:"foreignKey:RequestingUserID" json:"-"`
	Visit          *AppointmentVisit `gorm:"foreignKey:AppointmentID" json:"visit,omitempty"`
}

// AppointmentVisit represents the visit record created when an approved
// appointment takes place. At most one visit exists per appointment.
type AppointmentVisit struct {
	BaseModel
	AppointmentID string   `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Notes         string   `gorm:"type:text" json:"notes"`
	Outcome       string   `gorm:"size:255" json:"outcome"`
	BPM           *int     `json:"bpm,omitempty"`
	BloodPressure string   `gorm:"size:20" json:"bloodPressure,omitempty"`
	BodyTemp      *float64 `json:"bodyTemp,omitempty"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
