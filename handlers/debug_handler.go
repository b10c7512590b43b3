package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nivedhr/assessment_portal/models"
)

// Development-only endpoints. They carry no authentication; do not expose
// them outside a development deployment.

// DebugDB probes database connectivity with a trivial query.
func (h *PortalHandler) DebugDB(c *fiber.Ctx) error {
	var result int
	if err := h.db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Database connection successful", "result": result})
}

// DebugCandidateHistory dumps every row tied to an email address: the
// candidate records plus their test history, answers and scores.
func (h *PortalHandler) DebugCandidateHistory(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Params("email")))

	var candidates []models.Candidate
	if err := h.db.Where("LOWER(email) = ?", email).Order("submitted_at").Find(&candidates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	candidateIDs := make([]uint, 0, len(candidates))
	for _, cand := range candidates {
		candidateIDs = append(candidateIDs, cand.ID)
	}

	var history []models.TestHistory
	var answers []models.Answer
	var scores []models.Score
	if len(candidateIDs) > 0 {
		h.db.Where("candidate_id IN ?", candidateIDs).Order("assigned_at").Find(&history)
		h.db.Where("candidate_id IN ?", candidateIDs).Order("answered_at").Find(&answers)
		h.db.Where("candidate_id IN ?", candidateIDs).Order("submitted_at").Find(&scores)
	}

	return c.JSON(fiber.Map{
		"email":        email,
		"candidates":   candidates,
		"test_history": history,
		"answers":      answers,
		"scores":       scores,
	})
}
