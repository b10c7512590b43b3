package jobs

import (
	"log"
	"math"

	"github.com/nivedhr/assessment_portal/models"
	"gorm.io/gorm"
)

// AuditScores cross-checks every stored score against its answer rows and
// logs anything that disagrees. It never repairs data; a flagged score is
// an operator problem, not a job problem.
func AuditScores(db *gorm.DB) {
	log.Println("Running job: AuditScores...")

	var scores []models.Score
	if err := db.Find(&scores).Error; err != nil {
		log.Printf("Error loading scores for audit: %v", err)
		return
	}

	flagged := 0
	for _, score := range scores {
		var answerCount int64
		err := db.Model(&models.Answer{}).
			Where("score_id = ?", score.ScoreID).
			Count(&answerCount).Error
		if err != nil {
			log.Printf("Error counting answers for score %d: %v", score.ScoreID, err)
			continue
		}

		if answerCount != int64(score.TotalQuestions) {
			log.Printf("Audit: score %d has %d answer rows but total_questions=%d",
				score.ScoreID, answerCount, score.TotalQuestions)
			flagged++
		}

		var correctCount int64
		err = db.Model(&models.Answer{}).
			Where("score_id = ? AND is_correct = ?", score.ScoreID, true).
			Count(&correctCount).Error
		if err != nil {
			log.Printf("Error counting correct answers for score %d: %v", score.ScoreID, err)
			continue
		}

		if int(correctCount) != score.CorrectAnswers {
			log.Printf("Audit: score %d stores correct_answers=%d but %d answer rows are correct",
				score.ScoreID, score.CorrectAnswers, correctCount)
			flagged++
		}

		expected := 0.0
		if score.TotalQuestions > 0 {
			expected = float64(correctCount) / float64(score.TotalQuestions) * 100
		}
		if math.Abs(expected-score.ScorePercent) > 0.01 {
			log.Printf("Audit: score %d stores score_percent=%.2f but answers imply %.2f",
				score.ScoreID, score.ScorePercent, expected)
			flagged++
		}
	}

	if flagged == 0 {
		log.Println("Audit: all scores consistent.")
		return
	}
	log.Printf("Audit: flagged %d inconsistencies across %d scores.", flagged, len(scores))
}
