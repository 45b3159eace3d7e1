// Command devtoken mints a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"townsquare/internal/config"
	"townsquare/internal/middleware"
)

func main() {
	userID := flag.Uint("user", 1, "User ID to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to mint tokens in production")
	}

	token, err := middleware.IssueToken(cfg, *userID, *ttl)
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}
	fmt.Println(token)
}
