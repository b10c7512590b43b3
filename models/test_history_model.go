package models

import "time"

// TestHistory is the append-only record that a question was shown to a
// candidate for a given attempt.
type TestHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CandidateID   uint      `gorm:"not null;index" json:"candidate_id"`
	QuestionID    uint      `gorm:"not null" json:"question_id"`
	AttemptNumber int       `json:"attempt_number"`
	AssignedAt    time.Time `json:"assigned_at"`

	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"-"`
	Question  Question  `gorm:"foreignKey:QuestionID;references:QuestionID" json:"-"`
}

func (TestHistory) TableName() string { return "test_history" }
