package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vbonduro/gonext/internal/config"
	"github.com/vbonduro/gonext/internal/db"
	"github.com/vbonduro/gonext/internal/logging"
	"github.com/vbonduro/gonext/internal/photostore/local"
	"github.com/vbonduro/gonext/internal/service"
	"github.com/vbonduro/gonext/internal/store"
	"github.com/vbonduro/gonext/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using environment variables")
	}

	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	files, err := local.NewLocalFileStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	placeStore := store.NewPlaceStore(database)
	tripStore := store.NewTripStore(database)
	tripPlaceStore := store.NewTripPlaceStore(database)
	photoStore := store.NewPhotoStore(database)

	photoService := service.NewPhotoService(photoStore, files, logger)
	placeService := service.NewPlaceService(placeStore, photoService, logger)
	tripService := service.NewTripService(tripStore, tripPlaceStore, photoService, logger)
	tripPlaceService := service.NewTripPlaceService(tripPlaceStore, placeStore, photoService, logger)
	nextPlaceService := service.NewNextPlaceService(tripService, tripPlaceService)

	server := web.NewServer(web.Services{
		Places:     placeService,
		Trips:      tripService,
		TripPlaces: tripPlaceService,
		Photos:     photoService,
		Next:       nextPlaceService,
	}, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
