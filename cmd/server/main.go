package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"dayflow/internal/agent"
	"dayflow/internal/config"
	"dayflow/internal/database"
	"dayflow/internal/handlers"
	"dayflow/internal/jobs"
	"dayflow/internal/logging"
	"dayflow/internal/middleware"
	"dayflow/internal/services"
	"dayflow/internal/store"
	"dayflow/internal/tools"
	"dayflow/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logging.Init()

	log.Println("🚀 Starting Dayflow Server...")

	if err := godotenv.Load(); err == nil {
		log.Println("✅ .env file loaded")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Env: %s)", cfg.Port, cfg.Environment)

	// MongoDB holds all user data. Without it the server falls back to
	// in-memory stores, which is only acceptable for local development.
	var mongoDB *database.MongoDB
	var stores *store.Stores
	if cfg.MongoURI != "" {
		var err error
		mongoDB, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := mongoDB.Initialize(ctx); err != nil {
			cancel()
			log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
		}
		if err := store.EnsureIndexes(ctx, mongoDB.Database()); err != nil {
			cancel()
			log.Fatalf("❌ Failed to create MongoDB indexes: %v", err)
		}
		cancel()
		stores = store.NewMongoStores(mongoDB.Database())
		log.Println("✅ MongoDB connected")
	} else {
		if cfg.IsProduction() {
			log.Fatal("❌ MONGODB_URI is required in production")
		}
		stores = store.NewMemoryStores()
		log.Println("⚠️  MONGODB_URI not set, using in-memory stores (data is lost on restart)")
	}

	// MySQL only tracks refresh-token revocation. Optional: without it
	// refresh tokens cannot be revoked before expiry.
	var sqlDB *database.DB
	if cfg.DatabaseURL != "" {
		var err error
		sqlDB, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MySQL: %v", err)
		}
		defer sqlDB.Close()
		if err := sqlDB.Initialize(); err != nil {
			log.Fatalf("❌ Failed to initialize MySQL: %v", err)
		}
		log.Println("✅ MySQL connected (refresh token store)")
	} else {
		log.Println("⚠️  DATABASE_URL not set, refresh tokens cannot be revoked")
	}

	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		var err error
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, rate and usage limits disabled: %v", err)
		} else {
			defer redisService.Close()
			log.Println("✅ Redis connected")
		}
	}

	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		var err error
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("🔐 Local JWT auth enabled")
	} else if cfg.IsProduction() {
		log.Fatal("❌ JWT_SECRET is required in production")
	} else {
		log.Println("⚠️  JWT_SECRET not set, running without auth (development only)")
	}

	providerService, err := services.NewProviderService(cfg.ProvidersPath)
	if err != nil {
		log.Fatalf("❌ Failed to load providers from %s: %v", cfg.ProvidersPath, err)
	}
	defer providerService.Close()

	chatService := services.NewChatService(providerService)
	scraperService := services.NewScraperService()
	searchService := services.NewSearchService(cfg.SearXNGURLs, scraperService)
	if searchService.Enabled() {
		log.Printf("🔍 Web search enabled (%d SearXNG instances)", len(cfg.SearXNGURLs))
	} else {
		log.Println("⚠️  SEARXNG_URLS not set, search_web_resources tool disabled")
	}

	usageLimiter := services.NewUsageLimiterService(redisService, int64(cfg.DailyMessageLimit))
	sessionService := services.NewSessionService(cfg.SessionTTL)
	services.InitMetrics()

	registry := tools.NewRegistry(searchService.Enabled())
	dispatcher := agent.NewDispatcher(stores, registry, searchService)
	loop := agent.NewLoop(chatService, dispatcher, registry, stores.Bio, cfg.MaxIterations)
	log.Printf("🤖 Agent loop ready (%d tools, max %d iterations)", registry.Count(), cfg.MaxIterations)

	var userService *services.UserService
	if mongoDB != nil && jwtAuth != nil {
		userService = services.NewUserService(mongoDB, sqlDB, jwtAuth)
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	decayJob := jobs.NewResourceDecayJob(stores.Resources, cfg.ResourceDecayDays, cfg.ResourceDecayAmount, cfg.ResourceScoreFloor)
	if err := scheduler.Daily("resource-decay", 3, decayJob.Run); err != nil {
		log.Fatalf("❌ Failed to register resource decay job: %v", err)
	}
	if sqlDB != nil {
		tokenJob := jobs.NewTokenCleanupJob(sqlDB)
		if err := scheduler.Daily("token-cleanup", 4, tokenJob.Run); err != nil {
			log.Fatalf("❌ Failed to register token cleanup job: %v", err)
		}
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:      "Dayflow v1.0",
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  300 * time.Second,
		BodyLimit:    2 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("dayflow")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Handlers
	healthHandler := handlers.NewHealthHandler(mongoDB, sqlDB, redisService)
	assistantHandler := handlers.NewAssistantHandler(loop, sessionService, usageLimiter)
	scheduleHandler := handlers.NewScheduleHandler(stores.Schedule)
	ideaHandler := handlers.NewIdeaHandler(stores.Ideas)
	goalHandler := handlers.NewGoalHandler(stores.Goals)
	resourceHandler := handlers.NewResourceHandler(stores.Resources)
	bioHandler := handlers.NewBioHandler(stores.Bio)

	app.Get("/health", healthHandler.Health)

	// Public auth routes, rate limited per IP against credential stuffing.
	if userService != nil {
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := app.Group("/api/auth")
		authGroup.Post("/register", middleware.RedisRateLimit(redisService, "register", 10, time.Hour), authHandler.Register)
		authGroup.Post("/login", middleware.RedisRateLimit(redisService, "login", 20, 15*time.Minute), authHandler.Login)
		authGroup.Post("/refresh", middleware.RedisRateLimit(redisService, "refresh", 60, time.Hour), authHandler.Refresh)
		authGroup.Post("/logout", authHandler.Logout)
		authGroup.Get("/me", middleware.LocalAuthMiddleware(jwtAuth), authHandler.Me)
	}

	// Everything else requires a valid access token.
	api := app.Group("/api", middleware.LocalAuthMiddleware(jwtAuth))

	api.Post("/assistant/chat", assistantHandler.Chat)
	api.Get("/assistant/usage", assistantHandler.Usage)

	api.Get("/schedule", scheduleHandler.List)
	api.Post("/schedule", scheduleHandler.Create)
	api.Patch("/schedule/:id", scheduleHandler.Update)
	api.Delete("/schedule/:id", scheduleHandler.Delete)

	api.Get("/ideas", ideaHandler.List)
	api.Post("/ideas", ideaHandler.Create)
	api.Patch("/ideas/:id", ideaHandler.Update)
	api.Delete("/ideas/:id", ideaHandler.Delete)

	api.Get("/goals", goalHandler.List)
	api.Post("/goals", goalHandler.Create)
	api.Patch("/goals/:id", goalHandler.Update)
	api.Delete("/goals/:id", goalHandler.Delete)

	api.Get("/resources", resourceHandler.List)
	api.Post("/resources", resourceHandler.Create)
	api.Patch("/resources/:id", resourceHandler.Update)
	api.Delete("/resources/:id", resourceHandler.Delete)

	api.Get("/bio", bioHandler.Get)
	api.Put("/bio", bioHandler.Put)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		scheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}

		if mongoDB != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := mongoDB.Close(ctx); err != nil {
				log.Printf("⚠️ Error closing MongoDB: %v", err)
			}
			cancel()
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
