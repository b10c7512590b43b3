package models

import "time"

// Candidate is one registration attempt. Rows are created once and never
// updated or deleted; re-registering with the same email adds a new row
// under the same applicant. Phone, city, position, years of experience and
// tech stack are nullable so legacy rows export as N/A.
type Candidate struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	ApplicantID     uint     `gorm:"not null;index" json:"applicant_id"`
	FullName        string   `gorm:"size:100" json:"full_name"`
	Email           string   `gorm:"size:100;index" json:"email"`
	Phone           *string  `gorm:"size:20" json:"phone"`
	Area            string   `gorm:"size:100" json:"area"`
	City            *string  `gorm:"size:50" json:"city"`
	Pincode         string   `gorm:"size:10" json:"pincode"`
	Position        *string  `gorm:"size:100" json:"position"`
	HasExperience   bool     `json:"has_experience"`
	PreviousCompany string   `gorm:"size:100" json:"previous_company"`
	Role            string   `gorm:"size:100" json:"role"`
	Domain          string   `gorm:"size:100" json:"domain"`
	YearsExperience *float64 `json:"years_experience"`
	TechStack       *string  `gorm:"size:255" json:"tech_stack"`
	SubmittedAt     time.Time `json:"submitted_at"`

	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"-"`
}
