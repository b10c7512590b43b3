package models

import "time"

// Answer records the option a candidate picked for one question. At most
// one row exists per (candidate, question) within a submission cycle;
// re-submitting a set deletes the old rows before inserting new ones.
// SelectedOption is nil when the question was left blank.
type Answer struct {
	AnswerID       uint      `gorm:"primaryKey" json:"answer_id"`
	CandidateID    uint      `gorm:"not null;index" json:"candidate_id"`
	QuestionID     uint      `gorm:"not null" json:"question_id"`
	SelectedOption *string   `gorm:"size:1" json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
	ScoreID        uint      `gorm:"index" json:"score_id"`

	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"-"`
	Question  Question  `gorm:"foreignKey:QuestionID;references:QuestionID" json:"-"`
	Score     Score     `gorm:"foreignKey:ScoreID;references:ScoreID" json:"-"`
}
