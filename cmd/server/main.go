package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/config"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/database"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/handler"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/queue"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	h := handler.New(db, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost)
	router.Register(e, h, cfg, config.LoadRateLimit(), config.NewRedisClient())

	// Background consumer writes confirmed registrations to the audit log.
	go queue.StartInscriptionConsumer()

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
