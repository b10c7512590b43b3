package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/robfig/cron/v3"

	config "github.com/nivedhr/assessment_portal/configs"
	"github.com/nivedhr/assessment_portal/database"
	"github.com/nivedhr/assessment_portal/handlers"
	"github.com/nivedhr/assessment_portal/jobs"
	"github.com/nivedhr/assessment_portal/middleware"
	"github.com/nivedhr/assessment_portal/routes"
)

func main() {
	db := database.Connect()
	database.Migrate(db)
	database.SeedAdmin(db)

	c := cron.New()
	c.AddFunc("@hourly", func() { jobs.AuditScores(db) })
	go c.Start()
	log.Println("✅ Cron job for score audit scheduled successfully.")

	store := middleware.NewSessionStore()
	adminHandler := handlers.NewAdminHandler(db, store)

	engine := html.New("./views", ".html")

	app := fiber.New(fiber.Config{
		AppName:      "Assessment Admin",
		Views:        engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New())
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.AdminRoutes(app, adminHandler, store)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := config.Config("ADMIN_PORT")
	if port == "" {
		port = "5001"
	}
	log.Printf("✅ Admin console is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
