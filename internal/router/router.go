package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lumagram/backend/internal/cache"
	"github.com/lumagram/backend/internal/feed"
	"github.com/lumagram/backend/internal/handlers"
	"github.com/lumagram/backend/internal/middleware"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/notify"
	"github.com/lumagram/backend/internal/repositories"
	"github.com/lumagram/backend/internal/storage"
	"github.com/lumagram/backend/internal/stories"
	"github.com/lumagram/backend/pkg/config"
	"github.com/lumagram/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, fbApp *firebase.App, cfg *config.Config) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.Profile{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.SavedPost{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	mongoDB := mgClient.Database(cfg.MongoDatabase)
	profileRepo := repositories.NewPostgresProfileRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(pgdb)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Shared collaborators ---
	queryCache := cache.New()
	var pusher notify.Pusher
	if fbApp.MessagingClient != nil {
		pusher = notify.NewFCMPusher(fbApp.MessagingClient)
	}
	sink := notify.NewService(profileRepo, notificationRepo, pusher)

	var blobs storage.BlobStore
	if fbApp.StorageBucket != nil {
		blobs = storage.NewFirebaseBlobStore(fbApp.StorageBucket, fbApp.BucketName)
	}

	// --- Aggregators ---
	feedAggregator := feed.NewAggregator(postRepo, profileRepo, likeRepo, commentRepo, savedPostRepo, queryCache, sink)
	storyAggregator := stories.NewAggregator(storyRepo, profileRepo, blobs, queryCache)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(profileRepo, fbApp.AuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// Reads that allow anonymous browsing carry OptionalAuth; mutations
	// and notifications require a session.
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalAuth(cfg.JWTSecret))
	private := e.Group("/api/v1")
	private.Use(middleware.RequireAuth(cfg.JWTSecret))

	feedHandler := handlers.NewFeedHandler(feedAggregator)
	feedHandler.RegisterFeedRoutes(public)
	log.Println("Feed routes configured.")

	postHandler := handlers.NewPostHandler(feedAggregator, postRepo)
	postHandler.RegisterPostRoutes(public, private)
	log.Println("Post routes configured.")

	likeHandler := handlers.NewLikeHandler(feedAggregator, likeRepo)
	likeHandler.RegisterLikeRoutes(private)
	log.Println("Like routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, profileRepo, queryCache, sink)
	commentHandler.RegisterCommentRoutes(public, private)
	log.Println("Comment routes configured.")

	storyHandler := handlers.NewStoryHandler(storyAggregator)
	storyHandler.RegisterStoryRoutes(public, private)
	log.Println("Story routes configured.")

	profileHandler := handlers.NewProfileHandler(profileRepo, followRepo, postRepo, sink)
	profileHandler.RegisterProfileRoutes(public, private)
	log.Println("Profile routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(private)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
