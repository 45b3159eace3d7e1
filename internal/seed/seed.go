// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log/slog"

	"townsquare/internal/middleware"
	"townsquare/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// NumUsers overrides the preset's user count when positive.
	NumUsers    int
	ShouldClean bool
	DryRun      bool
	// MaxDays spreads created_at values this far into the past.
	MaxDays    int
	RandomSeed int64
	PresetPath string
}

// Summary counts what a seeding run created.
type Summary struct {
	Users        int
	Communities  int
	Marketplaces int
	Products     int
	InCarts      int
	Chatrooms    int
	Messages     int
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) (Summary, error) {
	preset := DefaultPreset()
	if opts.PresetPath != "" {
		p, err := LoadPreset(opts.PresetPath)
		if err != nil {
			return Summary{}, err
		}
		preset = p
	}
	if opts.NumUsers > 0 {
		preset.Users = opts.NumUsers
	}
	return SeedPreset(db, preset, opts)
}

// SeedPreset creates the dataset described by preset.
func SeedPreset(db *gorm.DB, preset Preset, opts Options) (Summary, error) {
	var sum Summary
	if err := preset.Validate(); err != nil {
		return sum, err
	}
	middleware.Logger.Info("seeding database",
		slog.String("preset", preset.Name),
		slog.Int("users", preset.Users),
		slog.Bool("dry_run", opts.DryRun),
	)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			middleware.Logger.Warn("could not clear existing data, continuing", slog.String("error", err.Error()))
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, preset.Users)
	for i := 0; i < preset.Users; i++ {
		u, err := f.CreateUser(func(u *models.User) {
			// keep a minor in every dataset so age gates have someone to stop
			if i == preset.Users-1 && preset.Users > 1 {
				u.Age = 16
			}
		})
		if err != nil {
			return sum, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	for ci, cp := range preset.Communities {
		creator := users[ci%len(users)]
		if cp.AgeRestricted && creator.Age < models.MinRestrictedAge {
			creator = users[0]
		}
		community, err := f.CreateCommunity(creator, func(c *models.Community) {
			c.Name = cp.Name
			if cp.Description != "" {
				c.Description = cp.Description
			}
			c.AgeRestricted = cp.AgeRestricted
		})
		if err != nil {
			return sum, fmt.Errorf("failed to create community %q: %w", cp.Name, err)
		}
		sum.Communities++

		members := []*models.User{creator}
		for _, u := range f.pick(users, cp.Members, creator.ID) {
			if cp.AgeRestricted && u.Age < models.MinRestrictedAge {
				continue
			}
			if err := f.JoinCommunity(community, u); err != nil {
				return sum, fmt.Errorf("failed to join community: %w", err)
			}
			members = append(members, u)
		}

		for _, name := range cp.Marketplaces {
			mp, err := f.CreateMarketplace(community, name)
			if err != nil {
				return sum, fmt.Errorf("failed to create marketplace %q: %w", name, err)
			}
			sum.Marketplaces++
			for p := 0; p < cp.Products; p++ {
				seller := members[f.rng.Intn(len(members))]
				inCart := len(members) > 1 && f.rng.Float64() < cp.CartRatio
				_, err := f.CreateProduct(mp, seller, func(prod *models.Product) {
					if !inCart {
						return
					}
					buyer := members[f.rng.Intn(len(members))]
					for buyer.ID == seller.ID {
						buyer = members[f.rng.Intn(len(members))]
					}
					prod.BuyerID = &buyer.ID
				})
				if err != nil {
					return sum, fmt.Errorf("failed to create product: %w", err)
				}
				sum.Products++
				if inCart {
					sum.InCarts++
				}
			}
		}

		for _, name := range cp.Chatrooms {
			room, err := f.CreateChatroom(community, name)
			if err != nil {
				return sum, fmt.Errorf("failed to create chatroom %q: %w", name, err)
			}
			sum.Chatrooms++
			for _, m := range members {
				if err := f.JoinChatroom(room, m); err != nil {
					return sum, fmt.Errorf("failed to join chatroom: %w", err)
				}
			}
			for i := 0; i < cp.Messages; i++ {
				if _, err := f.CreateMessage(room, members[f.rng.Intn(len(members))]); err != nil {
					return sum, fmt.Errorf("failed to create message: %w", err)
				}
				sum.Messages++
			}
		}
	}

	middleware.Logger.Info("seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("communities", sum.Communities),
		slog.Int("marketplaces", sum.Marketplaces),
		slog.Int("products", sum.Products),
		slog.Int("in_carts", sum.InCarts),
		slog.Int("chatrooms", sum.Chatrooms),
		slog.Int("messages", sum.Messages),
	)
	return sum, nil
}

// pick returns up to n distinct users other than exclude.
func (f *Factory) pick(users []*models.User, n int, exclude uint) []*models.User {
	perm := f.rng.Perm(len(users))
	out := make([]*models.User, 0, n)
	for _, idx := range perm {
		if len(out) == n {
			break
		}
		if users[idx].ID == exclude {
			continue
		}
		out = append(out, users[idx])
	}
	return out
}

var seededTables = []string{
	"messages", "chatroom_members", "chatrooms",
	"products", "marketplaces",
	"community_members", "communities", "users",
}

func clearData(db *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE messages, chatroom_members, chatrooms, products, marketplaces, community_members, communities, users RESTART IDENTITY CASCADE;`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range seededTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
