package models

import "time"

// Applicant is the identity that links the registration attempts made with
// one email address. Email is stored lower-cased and trimmed.
type Applicant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`

	Candidates []Candidate `gorm:"foreignKey:ApplicantID" json:"-"`
}
