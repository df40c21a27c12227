package main

import (
	"context"
	"log"

	"onlinejobs-scout/internal/api"
	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/dedup"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, closeStore, err := dedup.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	r := api.NewRouter(store)

	log.Printf("[server] listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
