package handlers_test

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nivedhr/assessment_portal/handlers"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/models"
	"github.com/nivedhr/assessment_portal/routes"
)

func newAdminApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	if err := db.Create(&models.AdminUser{Username: "admin", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("Failed to seed admin user: %v", err)
	}

	store := middleware.NewSessionStore()
	adminHandler := handlers.NewAdminHandler(db, store)
	app := fiber.New(fiber.Config{Views: html.New("../views", ".html")})
	routes.AdminRoutes(app, adminHandler, store)
	return app, db
}

func adminLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := postForm(t, app, "/", "", url.Values{
		"username": {"admin"},
		"password": {"letmein"},
	})
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("Login status = %d, want %d", resp.StatusCode, fiber.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("Login redirected to %q, want /dashboard", loc)
	}
	return sessionCookie(t, resp)
}

func strptr(s string) *string { return &s }

func seedCandidate(t *testing.T, db *gorm.DB, email string, submittedAt time.Time) models.Candidate {
	t.Helper()
	applicant := models.Applicant{Email: email}
	if err := db.Where("email = ?", email).FirstOrCreate(&applicant).Error; err != nil {
		t.Fatalf("Failed to seed applicant: %v", err)
	}
	years := 3.5
	candidate := models.Candidate{
		ApplicantID:     applicant.ID,
		FullName:        "Asha Rao",
		Email:           email,
		Phone:           strptr("9876543210"),
		Area:            "HSR Layout",
		City:            strptr("Bengaluru"),
		Pincode:         "560034",
		Position:        strptr("Backend Engineer"),
		HasExperience:   true,
		YearsExperience: &years,
		TechStack:       strptr("Python,SQL"),
		SubmittedAt:     submittedAt,
	}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatalf("Failed to seed candidate: %v", err)
	}
	return candidate
}

func TestAdminLoginFlow(t *testing.T) {
	app, _ := newAdminApp(t)

	resp := postForm(t, app, "/", "", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Invalid credentials") {
		t.Error("Wrong password did not render the invalid credentials message")
	}

	resp = postForm(t, app, "/", "", url.Values{
		"username": {"nobody"},
		"password": {"letmein"},
	})
	if body := readBody(t, resp); !strings.Contains(body, "Invalid credentials") {
		t.Error("Unknown username did not render the invalid credentials message")
	}

	cookie := adminLogin(t, app)
	resp = getPage(t, app, "/dashboard", cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Dashboard status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestAdminGuardRedirectsAnonymous(t *testing.T) {
	app, _ := newAdminApp(t)

	for _, path := range []string{"/dashboard", "/view_candidates", "/view_scores", "/download_candidates_csv"} {
		resp := getPage(t, app, path, "")
		if resp.StatusCode != fiber.StatusSeeOther {
			t.Errorf("%s status = %d, want %d", path, resp.StatusCode, fiber.StatusSeeOther)
		}
		if loc := resp.Header.Get("Location"); loc != "/" {
			t.Errorf("%s redirected to %q, want /", path, loc)
		}
	}
}

func TestAdminLogoutClearsSession(t *testing.T) {
	app, _ := newAdminApp(t)
	cookie := adminLogin(t, app)

	resp := getPage(t, app, "/logout", cookie)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("Logout status = %d, want %d", resp.StatusCode, fiber.StatusSeeOther)
	}

	resp = getPage(t, app, "/dashboard", cookie)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Errorf("Dashboard after logout status = %d, want %d", resp.StatusCode, fiber.StatusSeeOther)
	}
}

func TestDownloadCandidatesCSV(t *testing.T) {
	app, db := newAdminApp(t)
	seedCandidate(t, db, "asha@example.com", time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC))

	// A row with no optional details exports as N/A.
	applicant := models.Applicant{Email: "bare@example.com"}
	db.Create(&applicant)
	db.Create(&models.Candidate{
		ApplicantID: applicant.ID,
		FullName:    "Bare Row",
		Email:       "bare@example.com",
		SubmittedAt: time.Date(2026, 8, 16, 9, 0, 0, 0, time.UTC),
	})

	cookie := adminLogin(t, app)
	resp := getPage(t, app, "/download_candidates_csv", cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "filename=candidates.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := readBody(t, resp)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Candidate ID,Full Name,Email,Phone") {
		t.Errorf("CSV header = %q", lines[0])
	}
	// Rows are ordered by submission time, newest first.
	if !strings.Contains(lines[1], "Bare Row") {
		t.Errorf("First data row = %q, want the newest submission", lines[1])
	}
	if !strings.Contains(lines[1], "N/A,N/A,N/A,No,N/A,N/A") {
		t.Errorf("Bare row did not export optional fields as N/A: %q", lines[1])
	}
	if !strings.Contains(lines[2], "9876543210") || !strings.Contains(lines[2], "3.5") {
		t.Errorf("Full row missing field values: %q", lines[2])
	}
	if !strings.Contains(lines[2], "PM IST") {
		t.Errorf("Full row timestamp not in expected format: %q", lines[2])
	}
}

func TestViewScoresRenumbersAttemptsBySubmissionTime(t *testing.T) {
	app, db := newAdminApp(t)

	first := seedCandidate(t, db, "asha@example.com", time.Now().Add(-2*time.Hour))
	second := seedCandidate(t, db, "asha@example.com", time.Now().Add(-1*time.Hour))

	// Stored attempt numbers are deliberately sparse; the report renumbers
	// by submission time instead.
	db.Create(&models.Score{
		CandidateID:    first.ID,
		AttemptNumber:  4,
		TotalQuestions: 30,
		CorrectAnswers: 18,
		ScorePercent:   60,
		SubmittedAt:    time.Now().Add(-90 * time.Minute),
	})
	db.Create(&models.Score{
		CandidateID:    second.ID,
		AttemptNumber:  9,
		TotalQuestions: 30,
		CorrectAnswers: 24,
		ScorePercent:   80,
		SubmittedAt:    time.Now().Add(-30 * time.Minute),
	})

	cookie := adminLogin(t, app)
	resp := getPage(t, app, "/view_scores", cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Total Attempts: 2") {
		t.Error("Report does not show 2 total attempts for the email")
	}
	if !strings.Contains(body, "<td>1</td>") || !strings.Contains(body, "<td>2</td>") {
		t.Error("Attempts were not renumbered 1..n")
	}
	if strings.Contains(body, "<td>9</td>") {
		t.Error("Report leaked the stored attempt number instead of renumbering")
	}
	if !strings.Contains(body, "60.00") || !strings.Contains(body, "80.00") {
		t.Error("Report missing score percentages")
	}
}

func seedScoredSubmission(t *testing.T, db *gorm.DB, email string, setNumber int) models.Score {
	t.Helper()
	candidate := seedCandidate(t, db, email, time.Now())
	questions := seedQuestions(t, db, setNumber, 2)

	score := models.Score{
		CandidateID:    candidate.ID,
		AttemptNumber:  1,
		TotalQuestions: len(questions),
		CorrectAnswers: 1,
		ScorePercent:   50,
		SubmittedAt:    time.Now(),
	}
	if err := db.Create(&score).Error; err != nil {
		t.Fatalf("Failed to seed score: %v", err)
	}

	selected := questions[0].CorrectOption
	db.Create(&models.Answer{
		CandidateID:    candidate.ID,
		QuestionID:     questions[0].QuestionID,
		SelectedOption: &selected,
		IsCorrect:      true,
		AnsweredAt:     time.Now(),
		ScoreID:        score.ScoreID,
	})
	db.Create(&models.Answer{
		CandidateID: candidate.ID,
		QuestionID:  questions[1].QuestionID,
		IsCorrect:   false,
		AnsweredAt:  time.Now(),
		ScoreID:     score.ScoreID,
	})
	return score
}

func TestViewScoresBySet(t *testing.T) {
	app, db := newAdminApp(t)
	seedScoredSubmission(t, db, "asha@example.com", 2)

	cookie := adminLogin(t, app)
	resp := getPage(t, app, "/view_scores_by_set", cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "asha@example.com") {
		t.Error("Default set view missing the submission")
	}

	resp = postForm(t, app, "/view_scores_by_set", cookie, url.Values{"set_number": {"2"}})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "asha@example.com") {
		t.Error("Selected set view missing the submission")
	}
	if !strings.Contains(body, "50.00") {
		t.Error("Selected set view missing the score percent")
	}
}

func TestViewAnswersSheet(t *testing.T) {
	app, db := newAdminApp(t)
	score := seedScoredSubmission(t, db, "asha@example.com", 2)

	cookie := adminLogin(t, app)
	resp := getPage(t, app, "/view_answers/"+strconv.FormatUint(uint64(score.ScoreID), 10), cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Set 2 question 1") || !strings.Contains(body, "Set 2 question 2") {
		t.Error("Answer sheet missing question text")
	}
	if !strings.Contains(body, "Not answered") {
		t.Error("Answer sheet does not mark the blank answer")
	}
	if !strings.Contains(body, "asha@example.com") {
		t.Error("Answer sheet header missing candidate email")
	}
}

func TestViewAnswersUnknownScoreRedirects(t *testing.T) {
	app, _ := newAdminApp(t)

	cookie := adminLogin(t, app)
	resp := getPage(t, app, "/view_answers/9999", cookie)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/view_scores" {
		t.Errorf("Redirect location = %q, want /view_scores", loc)
	}

	resp = getPage(t, app, "/view_answers_by_set/9999", cookie)
	if loc := resp.Header.Get("Location"); loc != "/view_scores_by_set" {
		t.Errorf("Redirect location = %q, want /view_scores_by_set", loc)
	}
}
