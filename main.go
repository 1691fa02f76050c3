package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/unlinked-app/unlinked-backend/src/config"
	"github.com/unlinked-app/unlinked-backend/src/controllers"
	"github.com/unlinked-app/unlinked-backend/src/emails"
	"github.com/unlinked-app/unlinked-backend/src/lib"
	"github.com/unlinked-app/unlinked-backend/src/middleware"
	"github.com/unlinked-app/unlinked-backend/src/routes"
	"github.com/unlinked-app/unlinked-backend/src/services"
	"github.com/unlinked-app/unlinked-backend/src/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if err := lib.ConnectDB(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer lib.DisconnectDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := lib.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal("Failed to create indexes: ", err)
	}
	cancel()

	// Cloudinary es opcional; sin credenciales los uploads devuelven error
	var uploadService *services.UploadService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		uploadService, err = services.NewUploadService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Image uploads will not be available")
	}

	mailer := emails.NewSMTPSender(cfg)

	userStore := store.NewUsers(lib.DB)
	connectionStore := store.NewConnections(lib.DB)
	notificationStore := store.NewNotifications(lib.DB)

	connectionService := services.NewConnectionService(userStore, connectionStore, notificationStore, mailer, cfg.ClientURL)

	middleware.Init(userStore)
	controllers.Init(connectionService, uploadService, mailer, cfg.ClientURL)

	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.PostRoutes(app)
	routes.NotificationRoutes(app)
	routes.ConnectionRoutes(app)
	routes.JobRoutes(app)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
