package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookstore/internal/auth"
	"bookstore/internal/config"
	"bookstore/internal/handlers"
	"bookstore/internal/payments"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
	"bookstore/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// TranslateError maps driver errors onto gorm's portable sentinels, which
	// the services rely on for duplicate detection.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	wishlistRepo := repositories.NewWishlistRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	libraryRepo := repositories.NewLibraryRepository(db)
	progressRepo := repositories.NewReadingProgressRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.AccessTTL, cfg.RefreshTTL)
	verifier := auth.GoogleVerifier{}

	authService := services.NewAuthService(db, userRepo, tokens, verifier, cfg.GoogleClientID)
	catalogService := services.NewCatalogService(db, bookRepo, categoryRepo)
	shelfService := services.NewShelfService(db, bookRepo, wishlistRepo, purchaseRepo, libraryRepo, progressRepo)
	statsService := services.NewStatsService(db, statsRepo)

	storageBackend := storage.Select(cfg)
	paymentProvider := payments.Select(cfg)
	log.Printf("[INFO] main: storage backend %q, payment provider %q", cfg.StorageBackend, paymentProvider.Name())

	router := gin.Default()

	handlers.RegisterRoutes(router, authService, catalogService, shelfService, statsService, storageBackend, paymentProvider)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
