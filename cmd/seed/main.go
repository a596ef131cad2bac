// Package main provides a tool to seed a fresh database with an admin
// account and the default category and tag vocabulary.
//
// Usage:
//
//	DATA_PATH=~/Inkwell/data go run ./cmd/seed
//	DATA_PATH=~/Inkwell/data go run ./cmd/seed --admin-email root@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

var (
	adminEmail    = flag.String("admin-email", "admin@inkwell.local", "Email for the admin account")
	adminPassword = flag.String("admin-password", "changeme-now", "Initial admin password")
)

var defaultCategories = []string{
	"Technology",
	"Culture",
	"Opinion",
	"Tutorials",
}

var defaultTags = []string{
	"golang",
	"writing",
	"design",
}

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", cfg.DatabasePath())

	s, err := store.New(cfg.DatabasePath(), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if err := seedAdmin(ctx, s); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	taxonomy := service.NewTaxonomyService(s, nil)
	for _, name := range defaultCategories {
		category, err := taxonomy.EnsureCategory(ctx, name)
		if err != nil {
			log.Fatalf("Failed to seed category %q: %v", name, err)
		}
		fmt.Printf("Category %-12s %s\n", category.Name, category.ID)
	}
	for _, name := range defaultTags {
		tag, err := taxonomy.EnsureTag(ctx, name)
		if err != nil {
			log.Fatalf("Failed to seed tag %q: %v", name, err)
		}
		fmt.Printf("Tag      %-12s %s\n", tag.Name, tag.ID)
	}

	fmt.Println("Done.")
}

func seedAdmin(ctx context.Context, s *store.Store) error {
	if existing, err := s.Users.GetByIndex(ctx, "email", *adminEmail); err == nil {
		fmt.Printf("Admin %s already exists (%s)\n", existing.Email, existing.ID)
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(*adminPassword)
	if err != nil {
		return err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &domain.User{
		ID:           userID,
		Name:         "Admin",
		Email:        *adminEmail,
		Username:     "admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Users.Create(ctx, admin.ID, admin); err != nil {
		return err
	}

	fmt.Printf("Created admin %s (%s)\n", admin.Email, admin.ID)
	fmt.Println("Change the admin password after first login.")
	return nil
}
