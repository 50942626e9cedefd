package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"tunemart/cache"
	"tunemart/config"
	"tunemart/core/auth"
	"tunemart/core/catalog"
	"tunemart/core/review"
	"tunemart/db"
	"tunemart/logger"
	"tunemart/model"
	"tunemart/repository"
	"tunemart/storage"
)

// Start wires the marketplace and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer conn.Close()

	if err := db.InitSchema(conn); err != nil {
		log.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize object storage", logger.ErrorField(err))
	}

	// Redis is an optimization; a missing cache never blocks startup.
	var recordCache catalog.RecordCache
	if redisClient, err := db.ConnectRedis(cfg); err != nil {
		log.Warn("redis unavailable, catalog cache disabled", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		recordCache = cache.NewMusicCache(redisClient, cfg.CacheTTL, log)
	}

	musicRepo := repository.NewMySQLMusicRepository(conn)
	reviewRepo := repository.NewMySQLReviewRepository(conn)
	userRepo := repository.NewMySQLUserRepository(conn)

	catalogSvc := catalog.NewService(musicRepo, reviewRepo, store, recordCache, log)
	reviewSvc := review.NewService(reviewRepo, catalogSvc, log)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	apiHandler := NewAPIHandler(catalogSvc, reviewSvc, userRepo, store, tokens, cfg, log)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	RegisterRoutes(router, apiHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", logger.ErrorField(err))
	}
	log.Info("server stopped")
}

// RegisterRoutes attaches every marketplace endpoint to the router.
func RegisterRoutes(router *mux.Router, h *APIHandler) {
	// Accounts
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)

	// Artist catalog management
	router.HandleFunc("/api/artist/music/upload", h.requireRole(model.RoleArtist, h.UploadMusicHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artist/music", h.requireRole(model.RoleArtist, h.MyMusicHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artist/music/{id}", h.requireRole(model.RoleArtist, h.UpdateMusicHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/artist/music/{id}", h.requireRole(model.RoleArtist, h.DeleteMusicHandler)).Methods(http.MethodDelete)

	// Public catalog browsing
	router.HandleFunc("/api/music", h.ListMusicHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/search", h.SearchMusicHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/genre/{genre}", h.ListByGenreHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/{id}", h.GetMusicHandler).Methods(http.MethodGet)

	// Moderation
	router.HandleFunc("/api/music/{id}/flag", h.requireRole(model.RoleCustomer, h.FlagMusicHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/{id}/flag", h.requireRole(model.RoleCustomer, h.UnflagMusicHandler)).Methods(http.MethodDelete)

	// Reviews
	router.HandleFunc("/api/music/{id}/reviews", h.requireRole(model.RoleCustomer, h.CreateReviewHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/music/{id}/reviews", h.ListReviewsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/reviews/{id}", h.requireRole(model.RoleCustomer, h.UpdateReviewHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/reviews/{id}", h.requireRole(model.RoleCustomer, h.DeleteReviewHandler)).Methods(http.MethodDelete)

	// Stored assets
	router.HandleFunc("/assets/{kind}/{object}", h.AssetHandler).Methods(http.MethodGet)
}
