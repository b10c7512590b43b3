package models

// Question belongs to one of sets 1-5 and is immutable after seeding.
// CorrectOption holds the single letter A-D.
type Question struct {
	QuestionID    uint   `gorm:"primaryKey" json:"question_id"`
	SetNumber     int    `gorm:"not null;index" json:"set_number"`
	Category      string `gorm:"size:50" json:"category"`
	QuestionText  string `gorm:"size:500" json:"question_text"`
	OptionA       string `gorm:"size:255" json:"option_a"`
	OptionB       string `gorm:"size:255" json:"option_b"`
	OptionC       string `gorm:"size:255" json:"option_c"`
	OptionD       string `gorm:"size:255" json:"option_d"`
	CorrectOption string `gorm:"size:1" json:"correct_option"`
}
