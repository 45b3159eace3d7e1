// Command migrate runs schema operations for the backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"townsquare/internal/config"
	"townsquare/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Schema changes only happen on explicit request here.
	cfg.DBAutoMigrate = false

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		pending := 0
		for _, m := range database.PersistentModels() {
			stmt := db.Model(m).Statement
			if err := stmt.Parse(m); err != nil {
				return fmt.Errorf("parse model: %w", err)
			}
			table := stmt.Schema.Table
			if db.Migrator().HasTable(m) {
				log.Printf("present: %s", table)
			} else {
				pending++
				log.Printf("missing: %s", table)
			}
		}
		log.Printf("driver=%s env=%s missing=%d", db.Dialector.Name(), cfg.Env, pending)
	default:
		return usage()
	}

	return nil
}
