package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/api/handler"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/config"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/notifyhub"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/scheduler"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "resolvex"),
		getenv("DB_PASSWORD", "resolvex"),
		getenv("DB_NAME", "resolvexdb"),
		getenv("DB_PORT", "5432"),
	)

	// TranslateError turns driver unique-violations into
	// gorm.ErrDuplicatedKey, which the id generator's fallback relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Complaint{},
		&models.TimelineEvent{},
		&models.EvidencePhoto{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// seedCategories loads the default SLA table into an empty database.
func seedCategories(s *storage.Service) {
	var count int64
	if err := s.DB.Model(&models.Category{}).Count(&count).Error; err != nil {
		log.Printf("ERROR: Failed to check category table: %v", err)
		return
	}
	if count > 0 {
		return
	}
	for i := range config.SeedCategories {
		if err := s.SaveCategory(&config.SeedCategories[i]); err != nil {
			log.Printf("ERROR: Failed to seed category %s: %v", config.SeedCategories[i].Name, err)
		}
	}
	log.Printf("Seeded %d complaint categories.", len(config.SeedCategories))
}

func main() {
	log.Println("Starting ResolveX Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)
	seedCategories(s)

	broker := notifyhub.NewBroker(rdb)
	hub := notifyhub.NewHubService(broker)
	engine := lifecycle.NewService(s, broker)
	sweep := scheduler.NewEscalationScheduler(s, engine, config.EscalationInterval)

	go hub.Run()
	go sweep.Run(context.Background())

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		relay, err := telegram.NewRelayService(token, s, broker)
		if err != nil {
			log.Fatalf("Failed to start Telegram relay: %v", err)
		}
		go relay.Run()
	}

	r := gin.Default()
	h := handler.NewHandler(hub, s, engine)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	authed := r.Group("/", h.RequireAuth())
	{
		authed.GET("/ws", h.ServeWebSocket)
		authed.GET("/api/complaints/my", h.GetMyComplaints)
		authed.GET("/api/complaints/:id", h.GetComplaint)
		authed.GET("/api/authority/scorecard/:id", h.GetOfficerScorecard)

		citizen := authed.Group("/", h.RequireRole(models.RoleCitizen))
		{
			citizen.POST("/api/complaints", h.CreateComplaint)
			citizen.POST("/api/complaints/:id/verify", h.VerifyResolution)
		}

		authority := authed.Group("/", h.RequireRole(models.RoleAuthority))
		{
			authority.GET("/api/authority/complaints", h.GetAssignedComplaints)
			authority.POST("/api/authority/complaints/:id/accept", h.AcceptComplaint)
			authority.POST("/api/authority/complaints/:id/progress", h.MarkInProgress)
			authority.POST("/api/authority/complaints/:id/forward", h.ForwardComplaint)
			authority.POST("/api/authority/complaints/:id/resolve", h.ResolveComplaint)
		}
	}

	server := &http.Server{
		Addr:           ":" + getenv("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
