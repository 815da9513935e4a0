package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/Subodhrana390/tracker-app/internal/config"
	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/internal/handlers"
	"github.com/Subodhrana390/tracker-app/internal/middleware"
	"github.com/Subodhrana390/tracker-app/internal/routes"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET not set. Do not run production with the default secret.")
	}

	handlers.Init(cfg)

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Unique indexes back the per-resource uniqueness keys (one diary entry
	// per day, one final report and certificate per user).
	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	if cfg.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Password reset emails will not be sent")
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: security headers + in-process rate limits.
	// Non-production: Redis-based rate limit only.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Printf("🚀 Tracker backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
