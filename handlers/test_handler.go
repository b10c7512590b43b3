package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/models"
	"gorm.io/gorm"
)

// TestDurationMinutes is a display value passed to the test page; the
// server does not enforce a deadline.
const TestDurationMinutes = 30

// ShowTest assigns the set matching the session attempt number and renders
// it. Sets already taken by this candidate redirect to the completion page
// instead of being re-served.
func (h *PortalHandler) ShowTest(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	candidateID, ok := sess.Get("candidate_id").(uint)
	if !ok {
		middleware.SetFlash(sess, "warning", "Please register first to take the test.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	attemptNumber, _ := sess.Get("attempt_number").(int)
	if attemptNumber == 0 {
		attemptNumber = 1
	}

	assignedSet := attemptNumber
	if assignedSet > maxAttempts {
		middleware.SetFlash(sess, "info", "No more assessments available. Maximum 5 attempts allowed.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/completed", fiber.StatusSeeOther)
	}

	takenSets, err := h.takenSets(candidateID)
	if err != nil {
		log.Printf("test: failed to load taken sets for candidate %d: %v", candidateID, err)
		takenSets = nil
	}
	for _, taken := range takenSets {
		if taken == assignedSet {
			middleware.SetFlash(sess, "info", "You have already completed set "+strconv.Itoa(assignedSet)+" in this session.")
			sess.Set("last_completed_set", assignedSet)
			sess.Set("test_completed", true)
			if err := sess.Save(); err != nil {
				log.Printf("test: failed to save session: %v", err)
			}
			return c.Redirect("/completed", fiber.StatusSeeOther)
		}
	}

	questions, err := h.questionsForSet(assignedSet)
	if err != nil || len(questions) == 0 {
		log.Printf("test: no questions available for set %d (err: %v)", assignedSet, err)
		middleware.SetFlash(sess, "danger", "No questions available for set "+strconv.Itoa(assignedSet)+". Please contact support.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	// An assignment-history failure is logged but does not block the test.
	if err := h.assignToHistory(candidateID, assignedSet, questions); err != nil {
		log.Printf("test: failed to record assignment for candidate %d, set %d: %v", candidateID, assignedSet, err)
	}

	message, category := middleware.PopFlash(h.store, c)
	return c.Render("test", fiber.Map{
		"Questions":     questions,
		"CurrentSet":    assignedSet,
		"AttemptNumber": attemptNumber,
		"TestDuration":  TestDurationMinutes,
		"CandidateID":   candidateID,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

// SubmitTest scores a set submission. The caller lands on /completed
// whether or not the save succeeded; failure only surfaces as a flash.
func (h *PortalHandler) SubmitTest(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	candidateID, ok := sess.Get("candidate_id").(uint)
	if !ok {
		middleware.SetFlash(sess, "warning", "Please register first to take the test.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	currentSet, _ := strconv.Atoi(c.FormValue("current_set"))
	if currentSet == 0 {
		middleware.SetFlash(sess, "danger", "Invalid test submission.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/test", fiber.StatusSeeOther)
	}

	answers := h.parseAnswers(c)
	questions, err := h.questionsForSet(currentSet)
	if err != nil || len(questions) == 0 {
		log.Printf("test: failed to load questions for set %d: %v", currentSet, err)
		middleware.SetFlash(sess, "danger", "Error retrieving questions. Please try again.")
		if err := sess.Save(); err != nil {
			log.Printf("test: failed to save session: %v", err)
		}
		return c.Redirect("/test", fiber.StatusSeeOther)
	}

	if err := h.saveResults(candidateID, currentSet, questions, answers); err != nil {
		log.Printf("test: failed to save results for candidate %d, set %d: %v", candidateID, currentSet, err)
		middleware.SetFlash(sess, "danger", "Failed to save assessment results. Please contact support.")
	} else {
		middleware.SetFlash(sess, "success", "Assessment submitted successfully!")
		sess.Set("last_completed_set", currentSet)
		sess.Set("test_completed", true)
	}
	if err := sess.Save(); err != nil {
		log.Printf("test: failed to save session: %v", err)
	}
	return c.Redirect("/completed", fiber.StatusSeeOther)
}

// parseAnswers collects q_<questionID> form fields, dropping blanks and
// malformed keys.
func (h *PortalHandler) parseAnswers(c *fiber.Ctx) map[uint]string {
	answers := make(map[uint]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if !strings.HasPrefix(k, "q_") {
			return
		}
		v := strings.TrimSpace(string(value))
		if v == "" {
			return
		}
		questionID, err := strconv.ParseUint(k[2:], 10, 32)
		if err != nil {
			log.Printf("test: invalid question id in form field %q", k)
			return
		}
		answers[uint(questionID)] = v
	})
	return answers
}

// takenSets returns the union of set numbers referenced by the candidate's
// assignment history and answers.
func (h *PortalHandler) takenSets(candidateID uint) ([]int, error) {
	var historySets []int
	err := h.db.Model(&models.Question{}).
		Distinct().
		Joins("JOIN test_history ON test_history.question_id = questions.question_id").
		Where("test_history.candidate_id = ?", candidateID).
		Pluck("questions.set_number", &historySets).Error
	if err != nil {
		return nil, err
	}

	var answerSets []int
	err = h.db.Model(&models.Question{}).
		Distinct().
		Joins("JOIN answers ON answers.question_id = questions.question_id").
		Where("answers.candidate_id = ?", candidateID).
		Pluck("questions.set_number", &answerSets).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var sets []int
	for _, s := range append(historySets, answerSets...) {
		if !seen[s] {
			seen[s] = true
			sets = append(sets, s)
		}
	}
	return sets, nil
}

func (h *PortalHandler) questionsForSet(setNumber int) ([]models.Question, error) {
	var questions []models.Question
	err := h.db.Where("set_number = ?", setNumber).Order("question_id").Find(&questions).Error
	return questions, err
}

// assignToHistory appends one history row per question, tagged with the
// next attempt number for this candidate. A set that already appears in
// the history is left alone.
func (h *PortalHandler) assignToHistory(candidateID uint, setNumber int, questions []models.Question) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.TestHistory{}).
			Joins("JOIN questions ON questions.question_id = test_history.question_id").
			Where("test_history.candidate_id = ? AND questions.set_number = ?", candidateID, setNumber).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		var maxAttempt int
		err = tx.Model(&models.TestHistory{}).
			Where("candidate_id = ?", candidateID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Scan(&maxAttempt).Error
		if err != nil {
			return err
		}

		now := time.Now()
		rows := make([]models.TestHistory, 0, len(questions))
		for _, q := range questions {
			rows = append(rows, models.TestHistory{
				CandidateID:   candidateID,
				QuestionID:    q.QuestionID,
				AttemptNumber: maxAttempt + 1,
				AssignedAt:    now,
			})
		}
		return tx.Create(&rows).Error
	})
}

// saveResults scores one submission inside a single transaction. A repeat
// submission for the same candidate+set replaces the earlier answers and
// the score row matched by (candidate_id, total_questions); two sets with
// equal question counts would collide on that match, which the audit job
// reports rather than this path repairing.
func (h *PortalHandler) saveResults(candidateID uint, setNumber int, questions []models.Question, answers map[uint]string) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		setQuestionIDs := tx.Model(&models.Question{}).
			Select("question_id").
			Where("set_number = ?", setNumber)

		var existing int64
		err := tx.Model(&models.Answer{}).
			Where("candidate_id = ? AND question_id IN (?)", candidateID, setQuestionIDs).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			if err := tx.Where("candidate_id = ? AND question_id IN (?)", candidateID, setQuestionIDs).
				Delete(&models.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("candidate_id = ? AND total_questions = ?", candidateID, len(questions)).
				Delete(&models.Score{}).Error; err != nil {
				return err
			}
		}

		var maxAttempt int
		err = tx.Model(&models.Score{}).
			Where("candidate_id = ?", candidateID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Scan(&maxAttempt).Error
		if err != nil {
			return err
		}

		now := time.Now()
		score := models.Score{
			CandidateID:    candidateID,
			AttemptNumber:  maxAttempt + 1,
			TotalQuestions: len(questions),
			CorrectAnswers: 0,
			ScorePercent:   0,
			SubmittedAt:    now,
		}
		if err := tx.Create(&score).Error; err != nil {
			return err
		}

		correctCount := 0
		rows := make([]models.Answer, 0, len(questions))
		for _, q := range questions {
			var selected *string
			if v, ok := answers[q.QuestionID]; ok {
				value := v
				selected = &value
			}
			isCorrect := selected != nil && *selected == q.CorrectOption
			if isCorrect {
				correctCount++
			}
			rows = append(rows, models.Answer{
				CandidateID:    candidateID,
				QuestionID:     q.QuestionID,
				SelectedOption: selected,
				IsCorrect:      isCorrect,
				AnsweredAt:     now,
				ScoreID:        score.ScoreID,
			})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		percent := 0.0
		if len(questions) > 0 {
			percent = float64(correctCount) / float64(len(questions)) * 100
		}
		return tx.Model(&score).Updates(map[string]interface{}{
			"correct_answers": correctCount,
			"score_percent":   percent,
		}).Error
	})
}
