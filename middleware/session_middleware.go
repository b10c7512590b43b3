package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// NewSessionStore builds the cookie-session store shared by a service. The
// cookie carries only the session id; values live server-side.
func NewSessionStore() *session.Store {
	return session.New(session.Config{
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})
}

// SetFlash queues a one-shot message on an already-open session. The
// caller owns the Save; this keeps a request on a single session object.
func SetFlash(sess *session.Session, category, message string) {
	sess.Set("flash_message", message)
	sess.Set("flash_category", category)
}

// Flash stores a one-shot message in the session, mirroring the flash
// pattern the rendered views expect.
func Flash(store *session.Store, c *fiber.Ctx, category, message string) {
	sess, err := store.Get(c)
	if err != nil {
		log.Printf("flash: session unavailable: %v", err)
		return
	}
	SetFlash(sess, category, message)
	if err := sess.Save(); err != nil {
		log.Printf("flash: failed to save session: %v", err)
	}
}

// PopFlash returns and clears the pending flash message, if any.
func PopFlash(store *session.Store, c *fiber.Ctx) (message, category string) {
	sess, err := store.Get(c)
	if err != nil {
		return "", ""
	}
	if v, ok := sess.Get("flash_message").(string); ok {
		message = v
	}
	if v, ok := sess.Get("flash_category").(string); ok {
		category = v
	}
	if message != "" {
		sess.Delete("flash_message")
		sess.Delete("flash_category")
		if err := sess.Save(); err != nil {
			log.Printf("flash: failed to save session: %v", err)
		}
	}
	return message, category
}

// CandidateID reads the registered candidate id from the session.
func CandidateID(store *session.Store, c *fiber.Ctx) (uint, bool) {
	sess, err := store.Get(c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Get("candidate_id").(uint)
	return id, ok
}

// CandidateRequired redirects to the registration form when no candidate
// is registered in the session.
func CandidateRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CandidateID(store, c); !ok {
			Flash(store, c, "warning", "Please register first to take the test.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// AdminRequired gates the reporting views behind the login flag. A missing
// or stale session is cleared before redirecting to the login form.
func AdminRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		if loggedIn, ok := sess.Get("admin_logged_in").(bool); !ok || !loggedIn {
			if err := sess.Destroy(); err != nil {
				log.Printf("admin guard: failed to destroy session: %v", err)
			}
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
