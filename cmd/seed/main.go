// Command main runs the database seeder for Townsquare.
package main

import (
	"flag"
	"log"

	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 0, "Number of users to create (0 uses the preset's count)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "YAML preset file (defaults to SEED_PRESET, then the built-in preset)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	maxDays := flag.Int("days", 90, "Spread created_at values over this many past days")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	if *preset == "" {
		*preset = cfg.SeedPreset
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		ShouldClean: *shouldClean,
		DryRun:      *dryRun,
		MaxDays:     *maxDays,
		RandomSeed:  *randomSeed,
		PresetPath:  *preset,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d communities, %d products (%d in carts), %d messages",
		sum.Users, sum.Communities, sum.Products, sum.InCarts, sum.Messages)
}
