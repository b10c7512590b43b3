package models

import "time"

// ProctorEvent stores one tab-switch beacon sent by the test page. The
// count is the running total reported by the browser, not a delta.
type ProctorEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CandidateID   uint      `gorm:"not null;index" json:"candidate_id"`
	AttemptNumber int       `json:"attempt_number"`
	SwitchCount   int       `json:"switch_count"`
	ReportedAt    time.Time `json:"reported_at"`

	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"-"`
}
