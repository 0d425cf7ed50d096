package models

import (
	"time"
)

// Vaccination represents a vaccination entry on a patient's record
type Vaccination struct {
	BaseModel
	PatientUserID string    `gorm:"size:36;index;not null" json:"patientUserId"`
	VaccineName   string    `gorm:"size:100;not null" json:"vaccineName"`
	DateOfVaccine time.Time `json:"dateOfVaccine"`

	Patient User `gorm:"foreignKey:PatientUserID" json:"-"`
}

// TestResult represents a lab/imaging test result on a patient's record
type TestResult struct {
	BaseModel
	PatientUserID string    `gorm:"size:36;index;not null" json:"patientUserId"`
	TestType      string    `gorm:"size:100;not null" json:"testType"`
	TestDate      time.Time `json:"testDate"`
	Summary       string    `gorm:"type:text" json:"summary"`

	Patient User `gorm:"foreignKey:PatientUserID" json:"-"`
}

// TriageRequestState represents the state of a triage request
type TriageRequestState string

const (
	TriageRequested TriageRequestState = "requested"
	TriageAccepted  TriageRequestState = "accepted"
)

// TriageRequest represents a nurse's request to triage a case
type TriageRequest struct {
	BaseModel
	NurseUserID string             `gorm:"size:36;index;not null" json:"nurseUserId"`
	CaseID      string             `gorm:"size:36;index;not null" json:"caseId"`
	State       TriageRequestState `gorm:"size:20;default:'requested'" json:"state"`

	Nurse User `gorm:"foreignKey:NurseUserID" json:"-"`
	Case  Case `gorm:"foreignKey:CaseID" json:"-"`
}
