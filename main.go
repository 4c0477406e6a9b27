package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"league-match-system/handlers"
	"league-match-system/middleware"
	"league-match-system/models"
	"league-match-system/services"
	"league-match-system/utils"
	"league-match-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-Tenant-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Season{},
		&models.Deck{},
		&models.Profile{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.Config{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Chat relay is optional; without it the service runs headless and all
	// messaging side effects are skipped.
	var relay services.Messenger
	if relayURL := os.Getenv("RELAY_SERVICE_URL"); relayURL != "" {
		relay = services.NewRelayClient(relayURL, os.Getenv("LEAGUE_SERVICE_TOKEN"))
	} else {
		log.Println("RELAY_SERVICE_URL not set, running without a chat relay")
	}

	configService := services.NewConfigService(db)
	seasonService := services.NewSeasonService(db)
	standingsService := services.NewStandingsService(db, configService, seasonService)
	matchService := services.NewMatchService(db, relay)
	deckService := services.NewDeckService(db, configService, standingsService)
	profileService := services.NewProfileService(db, deckService, standingsService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if identityURL := os.Getenv("IDENTITY_SERVICE_URL"); identityURL != "" {
		syncWorker := workers.NewProfileSyncWorker(db, identityURL, "/api/v1/public/users", os.Getenv("LEAGUE_SERVICE_TOKEN"))
		syncWorker.Start(ctx)
	} else {
		log.Println("IDENTITY_SERVICE_URL not set, profile sync disabled")
	}

	matchService.StartDisputeReminder()

	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupLeagueRoutes(app, seasonService, standingsService, configService)
	handlers.SetupDeckRoutes(app, deckService, profileService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Server running on http://localhost:5300")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
