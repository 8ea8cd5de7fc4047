package main

import (
	"context"
	"log"

	"resume-roaster/internal/bootstrap"
	"resume-roaster/internal/shared/config"
	"resume-roaster/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting Resume Roaster on %s (store=%s provider=%s)", addr, cfg.LocalStoreType, cfg.LLMProvider)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
