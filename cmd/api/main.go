package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/waitlistpro/backend/configs"
	"github.com/waitlistpro/backend/database"
	"github.com/waitlistpro/backend/handlers"
	"github.com/waitlistpro/backend/middleware"
	"github.com/waitlistpro/backend/notifications"
	"github.com/waitlistpro/backend/routes"
	"github.com/waitlistpro/backend/services"
)

func main() {
	db, err := database.Connect(config.Config("DATABASE_URL"))
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}

	mailer := notifications.NewBrevoService(
		config.Config("BREVO_API_KEY"),
		config.Config("EMAIL_SENDER"),
		config.Config("EMAIL_SENDER_NAME"),
		config.ConfigOr("APP_URL", "http://localhost:3000"),
	)
	jwtSecret := config.Config("JWT_SECRET")

	fraudService := services.NewFraudService(db)
	metricsService := services.NewMetricsService(db)
	referralService := services.NewReferralService(db, mailerOrNil(mailer))
	inviteService := services.NewInviteService(db, mailerOrNil(mailer))

	authHandler := handlers.NewAuthHandler(db, jwtSecret)
	waitlistHandler := handlers.NewWaitlistHandler(db)
	signupHandler := handlers.NewSignupHandler(db, fraudService, referralService, mailerOrNil(mailer))
	dashboardHandler := handlers.NewDashboardHandler(db, metricsService, fraudService, inviteService)

	app := fiber.New(fiber.Config{
		AppName:       "WaitlistPro",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
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

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := middleware.Protected(jwtSecret)
	routes.AuthRoutes(app, authHandler, protected)
	routes.PublicRoutes(app, waitlistHandler, signupHandler)
	routes.DashboardRoutes(app, waitlistHandler, dashboardHandler, protected)

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

// mailerOrNil keeps a typed-nil *BrevoService from sneaking into a non-nil
// Mailer interface when email is unconfigured.
func mailerOrNil(m *notifications.BrevoService) notifications.Mailer {
	if m == nil {
		return nil
	}
	return m
}
