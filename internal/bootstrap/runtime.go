// Package bootstrap wires the runtime dependencies shared by the server and CLI tools.
package bootstrap

import (
	"fmt"
	"log/slog"

	"townsquare/internal/cache"
	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed runs the demo seeder when the database has no users yet.
	Seed bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.Seed {
		if err := seedIfEmpty(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		middleware.Logger.Warn("refusing to seed demo data in production")
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("database already populated, skipping seed", slog.Int64("users", users))
		return nil
	}

	_, err := seed.Seed(db, seed.Options{PresetPath: cfg.SeedPreset})
	return err
}
