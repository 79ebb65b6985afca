// Command seed provisions the bootstrap admin user. Registration always stores
// the admin flag false, so the first admin has to be created out of band.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"userdir/internal/config"
	"userdir/internal/db"
	apperrors "userdir/internal/errors"
	"userdir/internal/model"
	"userdir/internal/repository"
	"userdir/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	name := getEnv("ADMIN_NAME", "admin")
	email := getEnv("ADMIN_EMAIL", "admin@localhost")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD environment variable is required")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	repo := repository.NewUserRepository(gormDB)
	directory := service.NewDirectoryService(repo, nil)

	ctx := context.Background()
	user, err := directory.Create(ctx, name, email, password, "")
	if errors.Is(err, apperrors.ErrUserExists) {
		existing, ferr := repo.FindByName(ctx, name)
		if ferr != nil {
			log.Fatalf("find existing admin: %v", ferr)
		}
		user = existing
	} else if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	isAdmin := true
	if _, err := directory.Update(ctx, user.UUID, service.UserChanges{IsAdmin: &isAdmin}); err != nil {
		log.Fatalf("promote admin: %v", err)
	}

	log.Printf("admin user %q ready (uuid=%s)", name, user.UUID)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
