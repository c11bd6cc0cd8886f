package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gleam/dashboard/internal/auth"
	"github.com/gleam/dashboard/internal/config"
	"github.com/gleam/dashboard/internal/database"
	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/geo"
	"github.com/gleam/dashboard/internal/handler"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/repository"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gleam/dashboard/internal/storage"
	"github.com/gleam/dashboard/internal/upstream"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	selectorIdle    = 2 * time.Hour
	cleanupInterval = time.Hour
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// MinIO holds konten PDFs and, with GEO_SOURCE=minio, the boundary files
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		if cfg.Geo.Source == "minio" {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		log.Printf("MinIO unavailable, PDF uploads disabled: %v", err)
	}

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg)

	// Initialize repositories
	authRepo := repository.NewAuthRepository(db)
	geocodeRepo := repository.NewGeocodeRepository(db)

	// Backend client
	backend := upstream.NewClient(cfg)

	// Geo
	var source geo.Source = geo.DirSource{Root: cfg.Geo.DataDir}
	if cfg.Geo.Source == "minio" {
		source = geo.MinIOSource{Store: minioClient, Prefix: cfg.Geo.MinIOPrefix}
	}
	loader := geo.NewLoader(source, geo.LoaderOptions{
		DefaultFile:   cfg.Geo.DefaultFile,
		CatalogueFile: cfg.Geo.CatalogueFile,
		Timeout:       cfg.Geo.LoadTimeout,
	})
	registry := geo.NewRegistry(loader)
	geocoder := geo.NewGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, geocodeRepo)

	// WebSocket hub
	hub := handler.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(backend, authRepo, jwtService)
	forumService := service.NewForumService(backend, hub, cfg.Forum.PollInterval)
	kontenService := service.NewKontenService(backend)
	locationService := service.NewLocationService(backend, loader, registry, geocoder)
	screeningService := service.NewScreeningService(backend, service.NewPredictor(cfg.Prediction.Endpoints, cfg.Prediction.Timeout))
	reportService := service.NewReportService(backend)
	reviewService := service.NewReviewService(backend)
	adminService := service.NewAdminService(backend)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, locationService)
	profileHandler := handler.NewProfileHandler(authService)
	forumHandler := handler.NewForumHandler(forumService)
	wsHandler := handler.NewWebSocketHandler(hub, forumService)
	kontenHandler := handler.NewKontenHandler(kontenService)
	locationHandler := handler.NewLocationHandler(locationService)
	screeningHandler := handler.NewScreeningHandler(screeningService)
	reportHandler := handler.NewReportHandler(reportService, reviewService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	adminHandler := handler.NewAdminHandler(adminService)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, authService)
	staff := middleware.Roles(middleware.Staff...)
	screeners := middleware.Roles(domain.RoleNakes, domain.RoleManajemen, domain.RoleAdmin)
	adminOnly := middleware.Roles(domain.RoleAdmin)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.Origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	// Boundary files and the kelurahan catalogue are also served as static assets
	if cfg.Geo.Source == "fs" {
		app.Static("/data", cfg.Geo.DataDir)
	}

	// API v1 routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (me)
	api.Get("/me", authMiddleware.Required(), profileHandler.GetMe)
	api.Patch("/me", authMiddleware.Required(), profileHandler.UpdateMe)
	api.Patch("/me/password", authMiddleware.Required(), profileHandler.UpdatePassword)

	// Forum routes
	forumRoutes := api.Group("/forum", authMiddleware.Required())
	forumHandler.Register(forumRoutes)

	// WebSocket route for live threads
	forumRoutes.Get("/threads/:id/ws", wsHandler.WebSocketUpgrade(), websocket.New(wsHandler.HandleThread))

	// Konten routes
	kontenRoutes := api.Group("/konten", authMiddleware.Required())
	kontenRoutes.Get("/", kontenHandler.List)
	kontenRoutes.Get("/:id", kontenHandler.Get)
	kontenRoutes.Post("/", staff, kontenHandler.Create)
	kontenRoutes.Put("/:id", staff, kontenHandler.Update)
	kontenRoutes.Delete("/:id", staff, kontenHandler.Delete)

	// Upload routes
	if minioClient != nil {
		uploadHandler := handler.NewUploadHandler(minioClient)
		uploadRoutes := api.Group("/uploads", authMiddleware.Required())
		uploadRoutes.Post("/presign", staff, uploadHandler.Presign)
		uploadRoutes.Post("/confirm", staff, uploadHandler.Confirm)
		uploadRoutes.Get("/presign-view", uploadHandler.PresignView)
		uploadRoutes.Delete("/*", staff, uploadHandler.Delete)
	}

	// Location routes
	locationRoutes := api.Group("/locations", authMiddleware.Required())
	locationRoutes.Get("/kelurahan", locationHandler.Kelurahan)
	locationRoutes.Get("/boundary", locationHandler.Boundary)
	locationRoutes.Get("/boundary/current", locationHandler.CurrentBoundary)
	locationRoutes.Get("/reverse", locationHandler.Reverse)
	locationRoutes.Get("/users", screeners, locationHandler.Users)
	locationRoutes.Post("/me", locationHandler.SaveMine)

	// Screening routes
	screeningRoutes := api.Group("/screening", authMiddleware.Required())
	screeningRoutes.Post("/calculate", screeningHandler.Calculate)
	screeningRoutes.Get("/", screeningHandler.List)
	screeningRoutes.Post("/", screeningHandler.Submit)
	screeningRoutes.Get("/:id", screeningHandler.Get)
	api.Get("/nakes/patients", authMiddleware.Required(), middleware.Roles(domain.RoleNakes), screeningHandler.SearchPatients)

	// Report routes
	reportRoutes := api.Group("/reports", authMiddleware.Required(), screeners)
	reportRoutes.Get("/screening", reportHandler.Screening)
	reportRoutes.Get("/screening.xlsx", reportHandler.ScreeningXLSX)

	// Review routes
	api.Post("/reviews", authMiddleware.Required(), reviewHandler.Submit)

	// Admin routes
	adminRoutes := api.Group("/admin", authMiddleware.Required())
	adminRoutes.Get("/dashboard/stats", staff, adminHandler.DashboardStats)
	adminRoutes.Get("/users", adminOnly, adminHandler.ListUsers)
	adminRoutes.Post("/users", adminOnly, adminHandler.CreateUser)
	adminRoutes.Put("/users/:id", adminOnly, adminHandler.UpdateUser)
	adminRoutes.Delete("/users/:id", adminOnly, adminHandler.DeleteUser)
	adminRoutes.Get("/reviews", adminOnly, reviewHandler.List)
	adminRoutes.Get("/reviews.xlsx", adminOnly, reportHandler.ReviewXLSX)

	// Background cleanup of expired sessions and idle map selectors
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := authService.CleanupExpired(); err != nil {
					log.Printf("[Cleanup] Sessions: %v", err)
				}
				if n := registry.Sweep(selectorIdle); n > 0 {
					log.Printf("[Cleanup] Dropped %d idle map selectors", n)
				}
			case <-stop:
				return
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		close(stop)
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
