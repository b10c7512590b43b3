package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nivedhr/assessment_portal/models"
)

// defaultSetSize keeps the completion summary sensible when a set has no
// questions on record.
const defaultSetSize = 30

// Completed recomputes the answered/total counts from the database, then
// clears the session so the browser back button cannot re-enter the test.
func (h *PortalHandler) Completed(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	candidateID, ok := sess.Get("candidate_id").(uint)
	if !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	attemptNumber, _ := sess.Get("attempt_number").(int)
	if attemptNumber == 0 {
		attemptNumber = 1
	}
	currentSet, ok := sess.Get("last_completed_set").(int)
	if !ok {
		currentSet = attemptNumber
	}
	message, category := sessFlash(sess)

	totalAnswered := int64(0)
	totalQuestions := int64(defaultSetSize)

	setQuestionIDs := h.db.Model(&models.Question{}).
		Select("question_id").
		Where("set_number = ?", currentSet)

	err = h.db.Model(&models.Answer{}).
		Where("candidate_id = ? AND selected_option IS NOT NULL AND selected_option <> '' AND question_id IN (?)",
			candidateID, setQuestionIDs).
		Count(&totalAnswered).Error
	if err != nil {
		log.Printf("completed: failed to count answers for candidate %d: %v", candidateID, err)
	}

	var setSize int64
	err = h.db.Model(&models.Question{}).Where("set_number = ?", currentSet).Count(&setSize).Error
	if err != nil {
		log.Printf("completed: failed to count questions for set %d: %v", currentSet, err)
	} else if setSize > 0 {
		totalQuestions = setSize
	}

	if err := sess.Destroy(); err != nil {
		log.Printf("completed: failed to clear session: %v", err)
	}

	return c.Render("completed", fiber.Map{
		"TotalAnswered":  totalAnswered,
		"TotalQuestions": totalQuestions,
		"CurrentSet":     currentSet,
		"AttemptNumber":  attemptNumber,
		"FlashMessage":   message,
		"FlashCategory":  category,
	})
}

// sessFlash reads the pending flash straight off an open session; the
// session is about to be destroyed, so there is nothing to delete.
func sessFlash(sess *session.Session) (message, category string) {
	if v, ok := sess.Get("flash_message").(string); ok {
		message = v
	}
	if v, ok := sess.Get("flash_category").(string); ok {
		category = v
	}
	return message, category
}
