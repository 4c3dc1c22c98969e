package main

import (
	"context"
	"log"
	"os"

	"scratch_lottery/internal/db"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	tgID := int64(1234567890)

	u, err := repo.EnsureUser(ctx, tgID, "testuser", "Tester")
	if err != nil {
		log.Fatalf("ensure user failed: %v", err)
	}
	log.Printf("user id=%d username=%s coins=%d created_at=%v\n", u.ID, u.Username, u.Coins, u.CreatedAt)

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
