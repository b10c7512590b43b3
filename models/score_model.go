package models

import "time"

// Score aggregates one submission event. ScorePercent is always
// CorrectAnswers / TotalQuestions * 100, written in the same transaction
// as the answer rows.
type Score struct {
	ScoreID        uint      `gorm:"primaryKey" json:"score_id"`
	CandidateID    uint      `gorm:"not null;index" json:"candidate_id"`
	AttemptNumber  int       `json:"attempt_number"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	ScorePercent   float64   `json:"score_percent"`
	SubmittedAt    time.Time `json:"submitted_at"`

	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"-"`
}
