package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/models"
	"gorm.io/gorm"
)

var validate = validator.New()

const maxAttempts = 5

// PortalHandler serves the registrant flow: registration, test delivery,
// submission, completion and the dev-only debug dumps.
type PortalHandler struct {
	db    *gorm.DB
	store *session.Store
}

func NewPortalHandler(db *gorm.DB, store *session.Store) *PortalHandler {
	return &PortalHandler{db: db, store: store}
}

type registrationForm struct {
	FullName        string
	Email           string
	Phone           string
	Area            string
	City            string
	Pincode         string
	Position        string
	TechStack       []string
	HasExperience   bool
	PreviousCompany string
	Role            string
	Domain          string
	YearsExperience float64
}

func (h *PortalHandler) ShowRegister(c *fiber.Ctx) error {
	message, category := middleware.PopFlash(h.store, c)
	return h.renderRegister(c, registrationForm{}, message, category)
}

func (h *PortalHandler) renderRegister(c *fiber.Ctx, form registrationForm, message, category string) error {
	return c.Render("register", fiber.Map{
		"Form":          form,
		"FlashMessage":  message,
		"FlashCategory": category,
	})
}

// SubmitRegistration validates the form, enforces the five-attempt cap per
// email and inserts a fresh candidate row. Existing rows are never updated.
func (h *PortalHandler) SubmitRegistration(c *fiber.Ctx) error {
	form := registrationForm{
		FullName:        strings.TrimSpace(c.FormValue("full_name")),
		Email:           strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		Phone:           strings.TrimSpace(c.FormValue("phone")),
		Area:            strings.TrimSpace(c.FormValue("area")),
		City:            strings.TrimSpace(c.FormValue("city")),
		Pincode:         strings.TrimSpace(c.FormValue("pincode")),
		Position:        strings.TrimSpace(c.FormValue("position")),
		HasExperience:   c.FormValue("has_experience") == "Yes",
		PreviousCompany: strings.TrimSpace(c.FormValue("previous_company")),
		Role:            strings.TrimSpace(c.FormValue("role")),
		Domain:          strings.TrimSpace(c.FormValue("domain")),
	}
	for _, v := range c.Request().PostArgs().PeekMulti("tech_stack") {
		if s := strings.TrimSpace(string(v)); s != "" {
			form.TechStack = append(form.TechStack, s)
		}
	}

	if msg := h.validateRegistration(c, &form); msg != "" {
		return h.renderRegister(c, form, msg, "danger")
	}

	applicant, attemptCount, err := h.applicantAttempts(form.Email)
	if err != nil {
		log.Printf("registration: failed to look up applicant %s: %v", form.Email, err)
		return h.renderRegister(c, form, "An unexpected error occurred. Please try again.", "danger")
	}
	if attemptCount >= maxAttempts {
		return h.renderRegister(c, form, "You have already completed all available test sets (maximum 5 attempts).", "info")
	}
	nextAttempt := attemptCount + 1

	techStack := strings.Join(form.TechStack, ",")
	candidate := models.Candidate{
		ApplicantID:     applicant.ID,
		FullName:        form.FullName,
		Email:           form.Email,
		Phone:           &form.Phone,
		Area:            form.Area,
		City:            &form.City,
		Pincode:         form.Pincode,
		Position:        &form.Position,
		HasExperience:   form.HasExperience,
		PreviousCompany: form.PreviousCompany,
		Role:            form.Role,
		Domain:          form.Domain,
		YearsExperience: &form.YearsExperience,
		TechStack:       &techStack,
		SubmittedAt:     time.Now(),
	}
	if err := h.db.Create(&candidate).Error; err != nil {
		log.Printf("registration: failed to insert candidate for %s: %v", form.Email, err)
		return h.renderRegister(c, form, "Error during registration. Please try again.", "danger")
	}

	category, message := "success", "Registration successful! Your assessment is ready."
	if nextAttempt > 1 {
		category, message = "info", "Welcome back to the assessment!"
	}
	if err := h.startSession(c, candidate.ID, form.Email, int(nextAttempt), category, message); err != nil {
		log.Printf("registration: failed to start session for candidate %d: %v", candidate.ID, err)
		return h.renderRegister(c, form, "An unexpected error occurred. Please try again.", "danger")
	}
	return c.Redirect("/test", fiber.StatusSeeOther)
}

func (h *PortalHandler) validateRegistration(c *fiber.Ctx, form *registrationForm) string {
	required := []struct {
		label string
		value string
	}{
		{"full_name", form.FullName},
		{"email", form.Email},
		{"phone", form.Phone},
		{"area", form.Area},
		{"city", form.City},
		{"pincode", form.Pincode},
		{"position", form.Position},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.label)
		}
	}
	if len(form.TechStack) == 0 {
		missing = append(missing, "Tech Stack")
	}
	if len(missing) > 0 {
		return "Please fill all required fields: " + strings.Join(missing, ", ")
	}

	if form.HasExperience {
		expFields := []struct {
			label string
			value string
		}{
			{"previous_company", form.PreviousCompany},
			{"role", form.Role},
			{"domain", form.Domain},
			{"years_experience", strings.TrimSpace(c.FormValue("years_experience"))},
		}
		var missingExp []string
		for _, f := range expFields {
			if f.value == "" {
				missingExp = append(missingExp, f.label)
			}
		}
		if len(missingExp) > 0 {
			return "Please fill all experience fields: " + strings.Join(missingExp, ", ")
		}

		years, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("years_experience")), 64)
		if err != nil {
			return "Please enter a valid number for years of experience."
		}
		if years <= 0 {
			return "Years of experience must be greater than 0."
		}
		form.YearsExperience = years
	}

	if err := validate.Var(form.Email, "required,email"); err != nil {
		return "Invalid email format."
	}
	if err := validate.Var(form.Phone, "len=10,numeric"); err != nil {
		return "Phone must be exactly 10 digits."
	}
	if err := validate.Var(form.Pincode, "len=6,numeric"); err != nil {
		return "Pincode must be exactly 6 digits."
	}
	return ""
}

// applicantAttempts finds or creates the identity row for an email and
// returns it with the number of registration attempts made so far.
func (h *PortalHandler) applicantAttempts(email string) (models.Applicant, int64, error) {
	var applicant models.Applicant
	err := h.db.Where("email = ?", email).First(&applicant).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return applicant, 0, err
		}
		applicant = models.Applicant{Email: email}
		if err := h.db.Create(&applicant).Error; err != nil {
			return applicant, 0, err
		}
		return applicant, 0, nil
	}

	var count int64
	if err := h.db.Model(&models.Candidate{}).Where("applicant_id = ?", applicant.ID).Count(&count).Error; err != nil {
		return applicant, 0, err
	}
	return applicant, count, nil
}

// startSession clears any previous state and records the new candidate
// identity in one save. The attempt number stored here drives set
// assignment on GET /test.
func (h *PortalHandler) startSession(c *fiber.Ctx, candidateID uint, email string, attemptNumber int, flashCategory, flashMessage string) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	for _, key := range sess.Keys() {
		sess.Delete(key)
	}
	sess.Set("candidate_id", candidateID)
	sess.Set("candidate_email", email)
	sess.Set("attempt_number", attemptNumber)
	middleware.SetFlash(sess, flashCategory, flashMessage)
	return sess.Save()
}
