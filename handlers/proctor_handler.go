package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/models"
)

type tabSwitchRequest struct {
	Count     int    `json:"count" validate:"required,gt=0"`
	Timestamp string `json:"timestamp"`
}

// TabSwitch records a proctoring beacon sent by the test page whenever the
// candidate hides the browser tab. Failures never interrupt the test.
func (h *PortalHandler) TabSwitch(c *fiber.Ctx) error {
	candidateID, ok := middleware.CandidateID(h.store, c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized access"})
	}

	var req tabSwitchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tab switch payload"})
	}

	attemptNumber := 1
	if sess, err := h.store.Get(c); err == nil {
		if n, ok := sess.Get("attempt_number").(int); ok && n > 0 {
			attemptNumber = n
		}
	}

	reportedAt := time.Now()
	if req.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			reportedAt = ts
		}
	}

	event := models.ProctorEvent{
		CandidateID:   candidateID,
		AttemptNumber: attemptNumber,
		SwitchCount:   req.Count,
		ReportedAt:    reportedAt,
	}
	if err := h.db.Create(&event).Error; err != nil {
		log.Printf("proctor: failed to record tab switch for candidate %d: %v", candidateID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error recording event"})
	}

	return c.JSON(fiber.Map{"message": "Tab switch recorded"})
}
