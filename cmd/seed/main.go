// Command seed inserts demo clients for local development.
package main

import (
	"context"
	"log"

	"portal/internal/config"
	"portal/internal/db"
	"portal/internal/model"
	"portal/internal/repository"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.AllowedClient{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	clientRepo := repository.NewClientRepository(gormDB)
	ctx := context.Background()

	emails := []string{
		"client-one@example.com",
		"client-two@example.com",
		"client-three@example.com",
	}
	for _, email := range emails {
		if _, err := clientRepo.FindByEmail(ctx, email); err == nil {
			log.Printf("client %s already exists, skipping", email)
			continue
		}
		client := &model.AllowedClient{Email: email, Status: model.ClientStatusActive}
		if err := clientRepo.Create(ctx, client); err != nil {
			log.Fatalf("seed client %s: %v", email, err)
		}
		log.Printf("seeded client %s (%s)", email, client.ID)
	}
}
