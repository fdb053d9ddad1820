package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/lumagram/backend/internal/router"
	"github.com/lumagram/backend/pkg/config"
	"github.com/lumagram/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase (identity, push messaging, media bucket)
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
