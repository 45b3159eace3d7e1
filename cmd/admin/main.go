// Package main provides operator utilities for Townsquare accounts and communities.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go deactivate-user <user_id>     - Deactivate an account")
		fmt.Println("  go run ./cmd/admin/main.go reactivate-user <user_id>     - Reactivate an account")
		fmt.Println("  go run ./cmd/admin/main.go suspend-community <id>        - Soft-delete a community and its children")
		fmt.Println("  go run ./cmd/admin/main.go restore-community <id>        - Restore a community and its suspended children")
		fmt.Println("  go run ./cmd/admin/main.go list-inactive-users           - List deactivated accounts")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	communities := repository.NewCommunityRepository(db)

	command := os.Args[1]
	switch command {
	case "deactivate-user":
		id := requireID()
		if err := users.Delete(ctx, id); err != nil {
			log.Fatalf("Failed to deactivate user %d: %v", id, err)
		}
		fmt.Printf("User %d deactivated\n", id)

	case "reactivate-user":
		id := requireID()
		if err := users.Update(ctx, id, map[string]interface{}{"active": true}); err != nil {
			log.Fatalf("Failed to reactivate user %d: %v", id, err)
		}
		fmt.Printf("User %d reactivated\n", id)

	case "suspend-community":
		id := requireID()
		res, err := communities.Deactivate(ctx, id)
		if err != nil {
			log.Fatalf("Failed to suspend community %d: %v", id, err)
		}
		fmt.Printf("Community %d suspended (%d marketplaces, %d chatrooms)\n", id, res.Marketplaces, res.Chatrooms)

	case "restore-community":
		id := requireID()
		res, err := communities.Restore(ctx, id)
		if err != nil {
			log.Fatalf("Failed to restore community %d: %v", id, err)
		}
		fmt.Printf("Community %d restored (%d marketplaces, %d chatrooms)\n", id, res.Marketplaces, res.Chatrooms)

	case "list-inactive-users":
		inactive, err := users.Find(ctx, "active = ?", false)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		if len(inactive) == 0 {
			fmt.Println("No inactive users")
			return
		}
		for _, u := range inactive {
			fmt.Printf("  - %s (ID: %d, Email: %s)\n", u.Username, u.ID, u.Email)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func requireID() uint {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin/main.go %s <id>\n", os.Args[1])
		os.Exit(1)
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid ID %q\n", os.Args[2])
		os.Exit(1)
	}
	return uint(id)
}
