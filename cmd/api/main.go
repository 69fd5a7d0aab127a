// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
	"github.com/zawajlabs/zawaj-backend/internal/common/database"
	"github.com/zawajlabs/zawaj-backend/internal/config"
	"github.com/zawajlabs/zawaj-backend/internal/flags"
	"github.com/zawajlabs/zawaj-backend/internal/interest"
	"github.com/zawajlabs/zawaj-backend/internal/notifications"
	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Zawaj Matrimonial API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded")

	// 3. Connect to PostgreSQL
	log.Println("🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional; flag-analysis cache falls back to memory)
	log.Println("📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without Redis", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Auth middleware
	log.Println("🔐 Step 6: Initializing authentication...")
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	log.Println("✅ Authentication initialized")

	// 7. Profile module
	log.Println("👤 Step 7: Initializing Profile module...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 8. Notifications module
	log.Println("🔔 Step 8: Initializing Notifications module...")
	notificationsRepo := notifications.NewPostgresRepository(db)

	var emailProvider notifications.EmailProvider
	if cfg.EnableEmailNotifications {
		switch cfg.EmailProvider {
		case "sendgrid":
			emailProvider = notifications.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
			log.Println("   ✅ Using SendGrid for emails")
		default:
			emailProvider = notifications.NewMockEmailProvider()
			log.Println("   ⚠️  Using mock email provider (development mode)")
		}
	}

	var smsProvider notifications.SMSProvider
	if cfg.EnableSMSNotifications {
		switch cfg.SMSProvider {
		case "twilio":
			smsProvider = notifications.NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
			log.Println("   ✅ Using Twilio for SMS")
		default:
			smsProvider = notifications.NewMockSMSProvider()
			log.Println("   ⚠️  Using mock SMS provider (development mode)")
		}
	}

	notificationsService := notifications.NewService(notificationsRepo, emailProvider, smsProvider, cfg.NotificationExpiry)
	notificationsHandler := notifications.NewHandler(notificationsService)
	go startNotificationCleanup(notificationsService)
	log.Println("✅ Notifications module initialized")

	// 9. Interest module
	log.Println("💍 Step 9: Initializing Interest module...")
	interestRepo := interest.NewPostgresRepository(db)
	interestNotifier := notifications.NewInterestNotifier(notificationsService)
	interestService := interest.NewService(interestRepo, profileService, interestNotifier)
	interestHandler := interest.NewHandler(interestService)
	log.Println("✅ Interest module initialized")

	// 10. Flag analysis module
	log.Println("🚩 Step 10: Initializing Flag Analysis module...")
	var flagCache flags.Cache
	if redisClient != nil {
		flagCache = flags.NewRedisCache(redisClient)
		log.Println("   ✅ Using Redis for flag analysis cache")
	} else {
		flagCache = flags.NewMemoryCache()
		log.Println("   ⚠️  Using in-memory flag analysis cache")
	}

	var judge flags.Judge
	if cfg.OpenAIAPIKey != "" {
		judge = flags.NewOpenAIJudge(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("   ✅ Using OpenAI compatibility judge (%s)", cfg.OpenAIModel)
	} else {
		judge = &flags.MockJudge{}
		log.Println("   ⚠️  OpenAI key not configured, using mock judge")
	}

	flagsService := flags.NewService(flagCache, judge, interestService, profileService, cfg.JudgeTimeout)
	flagsHandler := flags.NewHandler(flagsService)
	log.Println("✅ Flag Analysis module initialized")

	// 11. Routes
	log.Println("🛣️  Step 11: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	interest.RegisterRoutes(router, interestHandler, authMiddleware)
	flags.RegisterRoutes(router, flagsHandler, authMiddleware)
	notifications.RegisterRoutes(router, notificationsHandler, authMiddleware)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	log.Println("✅ Routes registered")

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// startNotificationCleanup periodically removes expired notifications
func startNotificationCleanup(service notifications.Service) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := service.CleanupExpired(ctx); err != nil {
			log.Printf("Failed to cleanup expired notifications: %v", err)
		}
		cancel()
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE,
			phone VARCHAR(20) UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
			category VARCHAR(10) NOT NULL CHECK (category IN ('brother', 'sister')),
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			city VARCHAR(100),
			country VARCHAR(100),
			ethnicity VARCHAR(100),
			marital_status VARCHAR(50),
			about_me TEXT,
			religious_practice TEXT,
			prayer_habits TEXT,
			quran_engagement TEXT,
			islamic_education TEXT,
			lifestyle_description TEXT,
			halal_diet_notes TEXT,
			social_habits TEXT,
			personality_description TEXT,
			fitness_routine TEXT,
			health_notes TEXT,
			spousal_expectations TEXT,
			conflict_approach TEXT,
			family_roles TEXT,
			children_vision TEXT,
			legacy_planning TEXT,
			screening_questions TEXT[] NOT NULL DEFAULT '{}',
			wali_name VARCHAR(100),
			wali_relationship VARCHAR(50),
			wali_phone VARCHAR(30),
			wali_email VARCHAR(255),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS interests (
			id UUID PRIMARY KEY,
			requester_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			requester_category VARCHAR(10) NOT NULL,
			recipient_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			recipient_category VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'accepted', 'rejected', 'withdrawn')),
			questions_answered INTEGER NOT NULL DEFAULT 0 CHECK (questions_answered BETWEEN 0 AND 5),
			unlock_percentage INTEGER NOT NULL DEFAULT 0 CHECK (unlock_percentage BETWEEN 0 AND 100),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_interest_pair UNIQUE (requester_id, recipient_id)
		)`,

		`CREATE TABLE IF NOT EXISTS question_responses (
			id UUID PRIMARY KEY,
			interest_id UUID NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
			question_number INTEGER NOT NULL CHECK (question_number BETWEEN 1 AND 5),
			question_text TEXT NOT NULL,
			answer_text TEXT NOT NULL,
			category VARCHAR(20) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_interest_question UNIQUE (interest_id, question_number)
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			type VARCHAR(40) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			read_at TIMESTAMP WITH TIME ZONE,
			expires_at TIMESTAMP WITH TIME ZONE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_account_id ON profiles(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interests_requester ON interests(requester_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interests_recipient ON interests(recipient_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_question_responses_interest ON question_responses(interest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_account ON notifications(account_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(account_id) WHERE is_read = FALSE`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}

	return nil
}
