package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clinicdesk/crm/auth"
	"github.com/clinicdesk/crm/internal/config"
	"github.com/clinicdesk/crm/internal/db"
	"github.com/clinicdesk/crm/internal/logger"
	"github.com/clinicdesk/crm/internal/models"
	"github.com/clinicdesk/crm/internal/policy"
	"github.com/clinicdesk/crm/internal/presence"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.App.Dev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	dbConn, err := connectDB(cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
		zl.Info("migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			zl.Fatal("seeding failed", zap.Error(err))
		}
		zl.Info("seeding completed")
		return
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
		zl.Info("migrations completed")
	}

	// Seed default data (profiles, permissions)
	if err := db.Seed(dbConn); err != nil {
		zl.Fatal("seeding failed", zap.Error(err))
	}

	// Configure auth verifier to check if user exists in DB
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		dbConn.Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	// Presence tracking is optional; no Redis address means no tracker.
	var tracker *presence.Tracker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zl.Warn("redis unreachable, presence tracking disabled", zap.Error(err))
		} else {
			tracker = presence.New(rdb, 90*time.Second)
			zl.Info("presence tracking enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	routerCfg := policy.NewRouterConfig(dbConn, cfg, zl, tracker)

	appHandler := NewApp(dbConn, routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(zl, appHandler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server stopped gracefully")
}

// connectDB establishes a connection to the PostgreSQL database using config.
func connectDB(dbCfg config.DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	zl.Info("connecting to database",
		zap.String("host", dbCfg.Host),
		zap.Int("port", dbCfg.Port),
		zap.String("dbname", dbCfg.DBName),
		zap.String("user", dbCfg.User))
	return gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{})
}

// withLogging adds request logging middleware.
func withLogging(zl *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zl.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
