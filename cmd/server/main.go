// Package main GAOEX Events API
//
// @title           GAOEX Events API
// @version         1.0
// @description     Event catalog and registration service for GAOEX members.
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"log"
	"os"

	"gaoexevents/config"
	"gaoexevents/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	logger.Info("starting gaoexevents", "environment", cfg.Environment)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		logger.Error("app stopped with error", "error", err)
		os.Exit(1)
	}
}
