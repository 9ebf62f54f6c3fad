package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lensloft/gallerybackend/analytics"
	"github.com/lensloft/gallerybackend/config"
	"github.com/lensloft/gallerybackend/database"
	"github.com/lensloft/gallerybackend/handlers"
	"github.com/lensloft/gallerybackend/ingest"
	"github.com/lensloft/gallerybackend/media"
	"github.com/lensloft/gallerybackend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	for _, dir := range []string{cfg.PhotosPath, cfg.ThumbnailsPath, cfg.ScanDirectory, filepath.Dir(cfg.DatabasePath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create storage directory")
		}
	}

	db, err := database.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	photoRepo := repository.NewPhotoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	tagRepo := repository.NewTagRepository(db)
	analyticsRepo, err := repository.NewAnalyticsRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize analytics repository")
	}

	processor := media.NewProcessor(cfg.ThumbnailsPath)
	ingestor := ingest.NewIngestor(photoRepo, processor, cfg.ScanDirectory, cfg.StoragePath, cfg.PhotosPath)

	geo := analytics.NewCountryResolver(cfg.GeoAPIBaseURL, cfg.GeoTimeout)
	analyticsService := analytics.NewService(analyticsRepo, geo, cfg.GeoTimeout)

	authHandler := handlers.NewAuthHandler(&cfg)
	photoHandler := handlers.NewPhotoHandler(photoRepo, albumRepo, tagRepo, analyticsRepo, ingestor, cfg.StoragePath)
	albumHandler := handlers.NewAlbumHandler(albumRepo, photoRepo)
	tagHandler := handlers.NewTagHandler(tagRepo, photoRepo)
	viewHandler := handlers.NewViewHandler(photoRepo, analyticsRepo, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	assetHandler := handlers.NewAssetHandler(cfg.StoragePath)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	requireAuth := handlers.RequireAuth(cfg.AuthSecret)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		r.Get("/photos", photoHandler.List)
		r.Get("/photos/{id}", photoHandler.Get)
		r.Post("/photos/{id}/view", viewHandler.Record)

		r.Get("/albums", albumHandler.List)
		r.Get("/albums/{slug}", albumHandler.Get)

		r.Get("/tags", tagHandler.List)

		r.Post("/analytics/track", analyticsHandler.Track)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/photos/scan", photoHandler.Scan)
			r.Post("/photos/upload", photoHandler.Upload)
			r.Patch("/photos/{id}", photoHandler.Update)
			r.Delete("/photos/{id}", photoHandler.Delete)
			r.Put("/photos/{id}/tags", tagHandler.SetPhotoTags)
			r.Get("/photos/{id}/viewers", viewHandler.Viewers)

			r.Post("/albums", albumHandler.Create)
			r.Patch("/albums/{id}/cover", albumHandler.SetCover)
			r.Delete("/albums/{id}", albumHandler.Delete)

			r.Post("/tags", tagHandler.Create)

			r.Get("/analytics", analyticsHandler.Dashboard)
		})
	})

	// public paths mirror the storage layout, so no prefix rewriting
	r.Handle("/"+config.PhotosSubDir+"/*", assetHandler)
	r.Handle("/"+config.ThumbnailsSubDir+"/*", assetHandler)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("addr", cfg.ListenAddr).Str("env", cfg.Environment).Msg("Gallery backend listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server stopped unexpectedly")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
