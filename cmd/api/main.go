package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"carebook/internal/config"
	"carebook/internal/handler"
	"carebook/internal/middleware"
	"carebook/internal/repository"
	"carebook/internal/service"
	"carebook/internal/service/auth"
	"carebook/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, cfg)
	handlers := handler.NewHandlers(services)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := worker.NewPoller(services.Notification, services.Jobs, cfg)
	poller.Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Printf("Failed to shut down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)

	protected := v1.Group("", middleware.AuthRequired(authService))

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Post("/", middleware.RequireRole("admin"), h.Notification.Create)
	notifications.Post("/bulk", middleware.RequireRole("admin"), h.Notification.SendBulk)

	preferences := protected.Group("/notification-preferences")
	preferences.Get("/", h.Preference.Get)
	preferences.Put("/", h.Preference.Update)

	reminders := protected.Group("/appointments/:appointmentId/reminders")
	reminders.Post("/", middleware.RequireAnyRole("doctor", "admin"), h.Reminder.Create)
	reminders.Get("/", h.Reminder.List)
	reminders.Put("/", middleware.RequireAnyRole("doctor", "admin"), h.Reminder.Update)
	reminders.Delete("/", middleware.RequireAnyRole("doctor", "admin"), h.Reminder.Cancel)

	jobs := protected.Group("/jobs", middleware.RequireRole("admin"))
	jobs.Post("/process-scheduled", h.Jobs.ProcessScheduled)
	jobs.Post("/process-reminders", h.Jobs.ProcessReminders)
	jobs.Post("/cleanup", h.Jobs.Cleanup)
	jobs.Get("/:id", h.Jobs.Get)
}
