package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/domain"
	"vidtube/internal/repository"
)

// Seeds a demo account for local development. Safe to re-run: an existing
// demo user is left alone.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	exists, err := users.ExistsByUsernameOrEmail(ctx, "demo", "demo@vidtube.local")
	if err != nil {
		log.Fatal(err)
	}
	if exists {
		log.Println("demo user already present, nothing to do")
		return
	}

	user := &domain.User{
		Username:  "demo",
		Email:     "demo@vidtube.local",
		FullName:  "Demo User",
		Password:  "demo-password",
		AvatarURL: "/static/uploads/demo/avatar.png",
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatal(err)
	}

	log.Printf("seeded demo user id=%d username=%s", user.ID, user.Username)
}
