package handlers

import (
	"bytes"
	"encoding/csv"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminHandler serves the operator's read-only reporting views.
type AdminHandler struct {
	db    *gorm.DB
	store *session.Store
}

func NewAdminHandler(db *gorm.DB, store *session.Store) *AdminHandler {
	return &AdminHandler{db: db, store: store}
}

func (h *AdminHandler) ShowLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if loggedIn, ok := sess.Get("admin_logged_in").(bool); ok && loggedIn {
			return c.Redirect("/dashboard", fiber.StatusSeeOther)
		}
	}
	return c.Render("login", fiber.Map{"Error": ""})
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Render("login", fiber.Map{"Error": "Username and password are required."})
	}

	var adminUser models.AdminUser
	err := h.db.Where("username = ?", username).First(&adminUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Render("login", fiber.Map{"Error": "Invalid credentials. Please try again."})
		}
		log.Printf("admin login: %v", err)
		return c.Render("login", fiber.Map{"Error": "Database connection error. Please try again later."})
	}

	if bcrypt.CompareHashAndPassword([]byte(adminUser.PasswordHash), []byte(password)) != nil {
		return c.Render("login", fiber.Map{"Error": "Invalid credentials. Please try again."})
	}

	sess, err := h.store.Get(c)
	if err != nil {
		log.Printf("admin login: session unavailable: %v", err)
		return c.Render("login", fiber.Map{"Error": "Database connection error. Please try again later."})
	}
	sess.Set("admin_logged_in", true)
	if err := sess.Save(); err != nil {
		log.Printf("admin login: failed to save session: %v", err)
		return c.Render("login", fiber.Map{"Error": "Database connection error. Please try again later."})
	}
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	if sess, err := h.store.Get(c); err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("admin logout: failed to clear session: %v", err)
		}
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	message, category := middleware.PopFlash(h.store, c)
	return c.Render("dashboard", fiber.Map{
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

func (h *AdminHandler) ViewCandidates(c *fiber.Ctx) error {
	var candidates []models.Candidate
	if err := h.db.Find(&candidates).Error; err != nil {
		log.Printf("admin: failed to load candidates: %v", err)
		middleware.Flash(h.store, c, "danger", "Error loading candidates. Please try again later.")
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	message, category := middleware.PopFlash(h.store, c)
	return c.Render("candidates", fiber.Map{
		"Candidates":    candidates,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

// csvTimeLayout matches the export format of the reporting views;
// timestamps are labeled IST.
const csvTimeLayout = "2006-01-02 03:04:05 PM IST"

// DownloadCandidatesCSV streams the full candidate list with a fixed
// column order, substituting N/A for optional fields that never arrived.
func (h *AdminHandler) DownloadCandidatesCSV(c *fiber.Ctx) error {
	var candidates []models.Candidate
	if err := h.db.Order("submitted_at desc").Find(&candidates).Error; err != nil {
		log.Printf("admin: failed to load candidates for CSV: %v", err)
		middleware.Flash(h.store, c, "danger", "Error downloading candidates data. Please try again later.")
		return c.Redirect("/view_candidates", fiber.StatusSeeOther)
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	header := []string{
		"Candidate ID",
		"Full Name",
		"Email",
		"Phone",
		"City",
		"Position",
		"Has Experience",
		"Years of Experience",
		"Tech Stack",
		"Submission Date",
	}
	if err := w.Write(header); err != nil {
		log.Printf("admin: failed to write CSV header: %v", err)
		middleware.Flash(h.store, c, "danger", "Error downloading candidates data. Please try again later.")
		return c.Redirect("/view_candidates", fiber.StatusSeeOther)
	}

	for _, cand := range candidates {
		hasExperience := "No"
		if cand.HasExperience {
			hasExperience = "Yes"
		}
		submitted := "N/A"
		if !cand.SubmittedAt.IsZero() {
			submitted = cand.SubmittedAt.Format(csvTimeLayout)
		}
		row := []string{
			strconv.FormatUint(uint64(cand.ID), 10),
			cand.FullName,
			cand.Email,
			orNA(cand.Phone),
			orNA(cand.City),
			orNA(cand.Position),
			hasExperience,
			yearsOrNA(cand.YearsExperience),
			orNA(cand.TechStack),
			submitted,
		}
		if err := w.Write(row); err != nil {
			log.Printf("admin: failed to write CSV row: %v", err)
			middleware.Flash(h.store, c, "danger", "Error downloading candidates data. Please try again later.")
			return c.Redirect("/view_candidates", fiber.StatusSeeOther)
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=candidates.csv")
	c.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
	return c.Send(b.Bytes())
}

func orNA(v *string) string {
	if v == nil || *v == "" {
		return "N/A"
	}
	return *v
}

func yearsOrNA(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

type attemptSummary struct {
	ScoreID        uint
	AttemptNumber  int
	TotalQuestions int
	CorrectAnswers int
	ScorePercent   float64
	SubmittedAt    time.Time
}

type candidateScores struct {
	CandidateID   uint
	FullName      string
	Email         string
	TotalAttempts int64
	Attempts      []attemptSummary
}

// ViewScores groups every score by candidate email into an attempt
// history. Attempts are re-numbered locally by submission time; this is
// deliberately independent of the stored attempt_number, matching how the
// report has always read.
func (h *AdminHandler) ViewScores(c *fiber.Ctx) error {
	var allCandidates []models.Candidate
	if err := h.db.Find(&allCandidates).Error; err != nil {
		log.Printf("admin: failed to load scores: %v", err)
		middleware.Flash(h.store, c, "danger", "Error loading scores. Please try again later.")
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	entries := make(map[string]*candidateScores)
	var order []string
	for _, cand := range allCandidates {
		if _, ok := entries[cand.Email]; ok {
			continue
		}
		var total int64
		h.db.Model(&models.Candidate{}).Where("email = ?", cand.Email).Count(&total)
		entries[cand.Email] = &candidateScores{
			CandidateID:   cand.ID,
			FullName:      cand.FullName,
			Email:         cand.Email,
			TotalAttempts: total,
		}
		order = append(order, cand.Email)
	}

	var scores []models.Score
	err := h.db.
		Joins("JOIN candidates ON candidates.id = scores.candidate_id").
		Order("candidates.email, scores.submitted_at").
		Find(&scores).Error
	if err != nil {
		log.Printf("admin: failed to load scores: %v", err)
		middleware.Flash(h.store, c, "danger", "Error loading scores. Please try again later.")
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	for _, score := range scores {
		var cand models.Candidate
		if err := h.db.First(&cand, score.CandidateID).Error; err != nil {
			continue
		}
		entry, ok := entries[cand.Email]
		if !ok {
			continue
		}
		entry.Attempts = append(entry.Attempts, attemptSummary{
			ScoreID:        score.ScoreID,
			AttemptNumber:  score.AttemptNumber,
			TotalQuestions: score.TotalQuestions,
			CorrectAnswers: score.CorrectAnswers,
			ScorePercent:   score.ScorePercent,
			SubmittedAt:    score.SubmittedAt,
		})
	}

	result := make([]*candidateScores, 0, len(order))
	for _, email := range order {
		entry := entries[email]
		sort.Slice(entry.Attempts, func(i, j int) bool {
			return entry.Attempts[i].SubmittedAt.Before(entry.Attempts[j].SubmittedAt)
		})
		for i := range entry.Attempts {
			entry.Attempts[i].AttemptNumber = i + 1
		}
		result = append(result, entry)
	}

	message, category := middleware.PopFlash(h.store, c)
	return c.Render("scores", fiber.Map{
		"Candidates":    result,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

type setScoreRow struct {
	CandidateID    uint
	FullName       string
	Email          string
	ScoreID        uint
	AttemptNumber  int
	TotalQuestions int
	CorrectAnswers int
	ScorePercent   float64
	SubmittedAt    time.Time
	SetNumber      int
}

const setScoreSelect = "candidates.id AS candidate_id, candidates.full_name, candidates.email, " +
	"scores.score_id, scores.attempt_number, scores.total_questions, scores.correct_answers, " +
	"scores.score_percent, scores.submitted_at, questions.set_number"

// setScoreQuery joins a score to its set number through the answer rows;
// grouping collapses the per-answer duplication back to one row per score.
func (h *AdminHandler) setScoreQuery() *gorm.DB {
	return h.db.Table("scores").
		Select(setScoreSelect).
		Joins("JOIN candidates ON candidates.id = scores.candidate_id").
		Joins("JOIN answers ON answers.score_id = scores.score_id").
		Joins("JOIN questions ON questions.question_id = answers.question_id").
		Group("scores.score_id, candidates.id, questions.set_number")
}

func (h *AdminHandler) ViewScoresBySet(c *fiber.Ctx) error {
	var sets []int
	err := h.db.Model(&models.Question{}).
		Distinct().
		Order("set_number").
		Pluck("set_number", &sets).Error
	if err != nil {
		log.Printf("admin: failed to load sets: %v", err)
		middleware.Flash(h.store, c, "danger", "Error loading scores by set. Please try again later.")
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	if len(sets) == 0 {
		return c.Render("scores_by_set", fiber.Map{
			"Sets":        sets,
			"SelectedSet": 0,
			"Scores":      []setScoreRow{},
		})
	}

	selectedSet := sets[0]
	if v := c.FormValue("set_number"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			selectedSet = n
		}
	}

	var rows []setScoreRow
	err = h.setScoreQuery().
		Where("questions.set_number = ?", selectedSet).
		Order("candidates.email, scores.attempt_number").
		Scan(&rows).Error
	if err != nil {
		log.Printf("admin: failed to load scores for set %d: %v", selectedSet, err)
		middleware.Flash(h.store, c, "danger", "Error loading scores by set. Please try again later.")
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	message, category := middleware.PopFlash(h.store, c)
	return c.Render("scores_by_set", fiber.Map{
		"Sets":          sets,
		"SelectedSet":   selectedSet,
		"Scores":        rows,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

type answerSheetRow struct {
	AnswerID       uint
	SelectedOption *string
	IsCorrect      bool
	AnsweredAt     time.Time
	QuestionID     uint
	SetNumber      int
	Category       string
	QuestionText   string
	OptionA        string
	OptionB        string
	OptionC        string
	OptionD        string
	CorrectOption  string
}

// loadAnswerSheet resolves one score's header row plus its full answer
// sheet ordered by question category then question id.
func (h *AdminHandler) loadAnswerSheet(scoreID uint) (setScoreRow, []answerSheetRow, error) {
	var score setScoreRow
	result := h.setScoreQuery().
		Where("scores.score_id = ?", scoreID).
		Limit(1).
		Scan(&score)
	if result.Error != nil {
		return score, nil, result.Error
	}
	if result.RowsAffected == 0 || score.ScoreID == 0 {
		return score, nil, gorm.ErrRecordNotFound
	}

	var answers []answerSheetRow
	err := h.db.Table("answers").
		Select("answers.answer_id, answers.selected_option, answers.is_correct, answers.answered_at, "+
			"questions.question_id, questions.set_number, questions.category, questions.question_text, "+
			"questions.option_a, questions.option_b, questions.option_c, questions.option_d, questions.correct_option").
		Joins("JOIN questions ON questions.question_id = answers.question_id").
		Where("answers.score_id = ?", scoreID).
		Order("questions.category, questions.question_id").
		Scan(&answers).Error
	if err != nil {
		return score, nil, err
	}
	return score, answers, nil
}

func (h *AdminHandler) ViewAnswers(c *fiber.Ctx) error {
	return h.renderAnswerSheet(c, "view_answers", "/view_scores")
}

func (h *AdminHandler) ViewAnswersBySet(c *fiber.Ctx) error {
	return h.renderAnswerSheet(c, "view_answers_by_set", "/view_scores_by_set")
}

func (h *AdminHandler) renderAnswerSheet(c *fiber.Ctx, view, fallback string) error {
	scoreID, err := strconv.ParseUint(c.Params("scoreId"), 10, 32)
	if err != nil {
		middleware.Flash(h.store, c, "danger", "Score not found.")
		return c.Redirect(fallback, fiber.StatusSeeOther)
	}

	score, answers, err := h.loadAnswerSheet(uint(scoreID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			middleware.Flash(h.store, c, "danger", "Score not found.")
		} else {
			log.Printf("admin: failed to load answers for score %d: %v", scoreID, err)
			middleware.Flash(h.store, c, "danger", "Error loading answers. Please try again later.")
		}
		return c.Redirect(fallback, fiber.StatusSeeOther)
	}

	message, category := middleware.PopFlash(h.store, c)
	return c.Render(view, fiber.Map{
		"Score":         score,
		"Answers":       answers,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}
