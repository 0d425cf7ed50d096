package models

// CaseState represents the lifecycle state of a case
type CaseState string

const (
	CaseStateOpen   CaseState = "open"
	CaseStateClosed CaseState = "closed"
)

// Case represents a clinical case opened for a patient. A case moves
// open -> closed exactly once and is never reopened.
type Case struct {
	BaseModel
	PatientUserID string    `gorm:"size:36;index;not null" json:"patientUserId"`
	DoctorUserID  *string   `gorm:"size:36;index" json:"doctorUserId,omitempty"` // nil until a doctor is assigned
	State         CaseState `gorm:"size:20;default:'open'" json:"state"`
	Version       int       `gorm:"default:1" json:"-"` // optimistic lock

	// Relations
	Patient      User          `gorm:"foreignKey:PatientUserID" json:"-"`
	Doctor       *User         `gorm:"foreignKey:DoctorUserID" json:"-"`
	Appointments []Appointment `gorm:"foreignKey:CaseID" json:"appointments,omitempty"`
	Messages     []CaseMessage `gorm:"foreignKey:CaseID" json:"messages,omitempty"`
}

// CaseMessage represents a message posted on a case
type CaseMessage struct {
	BaseModel
	CaseID       string `gorm:"size:36;index;not null" json:"caseId"`
	SenderUserID string `gorm:"size:36;index;not null" json:"senderUserId"`
	Content      string `gorm:"type:text" json:"content"`

	// Relations
	Case   Case `gorm:"foreignKey:CaseID" json:"-"`
	Sender User `gorm:"foreignKey:SenderUserID" json:"-"`
}
