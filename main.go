package main

import (
	"github.com/joho/godotenv"

	"github.com/bookmarket/bookmarket/internal/config"
	"github.com/bookmarket/bookmarket/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
