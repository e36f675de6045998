package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stripe/stripe-go/v78"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	stripe.Key = cfg.Stripe.SecretKey

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	matchRepo := repositories.NewMatchRepository(db)
	usageRepo := repositories.NewUsageRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractor := services.NewExtractorService(cfg.Storage.MaxFileSize, cfg.Storage.MinTextLength)
	usageService := services.NewUsageService(userRepo, resumeRepo, jobRepo, usageRepo)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	llmClient, err := services.NewGeminiClient(cfg.LLM)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	analyzer := services.NewAnalyzerService(resumeRepo, usageService, llmClient)
	matcher := services.NewMatcherService(resumeRepo, jobRepo, matchRepo, usageService, llmClient)

	// Initialize handlers
	authMiddleware := handlers.NewAuthMiddleware(userRepo, cfg.Auth.JWTSecret)
	authHandler := handlers.NewAuthHandler(userRepo, authMiddleware, cfg.Auth.TokenTTL)
	resumeHandler := handlers.NewResumeHandler(resumeRepo, extractor, storageService, usageService, analyzer)
	jobHandler := handlers.NewJobHandler(jobRepo, usageService)
	matchHandler := handlers.NewMatchHandler(matchRepo, matcher)
	subHandler := handlers.NewSubscriptionHandler(userRepo, subRepo, usageService, cfg.Stripe.WebhookSecret)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Auth
	api.Post("/auth/sign-up", authHandler.HandleSignUp)
	api.Post("/auth/sign-in", authHandler.HandleSignIn)

	// Billing webhook is authenticated by its Stripe signature, not a JWT.
	api.Post("/subscription/webhook", subHandler.HandleWebhook)

	// Authenticated endpoints
	authed := api.Group("", authMiddleware.RequireAuth)

	authed.Post("/resumes", resumeHandler.HandleUpload)
	authed.Get("/resumes", resumeHandler.HandleList)
	authed.Get("/resumes/:id", resumeHandler.HandleGet)
	authed.Delete("/resumes/:id", resumeHandler.HandleDelete)
	authed.Post("/resumes/:id/analysis", resumeHandler.HandleAnalyze)
	authed.Get("/resumes/:id/analysis", resumeHandler.HandleGetAnalysis)
	authed.Delete("/resumes/:id/analysis", resumeHandler.HandleDeleteAnalysis)

	authed.Post("/jobs", jobHandler.HandleCreate)
	authed.Get("/jobs", jobHandler.HandleList)
	authed.Get("/jobs/:id", jobHandler.HandleGet)
	authed.Put("/jobs/:id", jobHandler.HandleUpdate)
	authed.Delete("/jobs/:id", jobHandler.HandleDelete)

	authed.Post("/matches", matchHandler.HandleCreate)
	authed.Get("/matches", matchHandler.HandleList)
	authed.Get("/matches/:id", matchHandler.HandleGet)
	authed.Delete("/matches/:id", matchHandler.HandleDelete)

	authed.Get("/subscription/usage", subHandler.HandleUsage)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/auth/sign-up",
				"POST /api/v1/auth/sign-in",
				"POST /api/v1/resumes",
				"POST /api/v1/resumes/:id/analysis",
				"POST /api/v1/jobs",
				"POST /api/v1/matches",
				"GET /api/v1/subscription/usage",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
