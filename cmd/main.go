package main

import (
	"fmt"
	"os"
	"time"

	"github.com/medlabel/medlabel-backend/internal/db"
	"github.com/medlabel/medlabel-backend/internal/handlers"
	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/middleware"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/server"
	"github.com/medlabel/medlabel-backend/internal/services"
	"github.com/medlabel/medlabel-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	claimExpiryMinutes := utils.GetEnvAsInt("CLAIM_EXPIRY_MINUTES", 30, log)

	// Store
	storeService, err := db.NewStoreService(log)
	if err != nil {
		log.Error("Store init failed", "error", err)
		os.Exit(1)
	}
	if err = storeService.AutoMigrateAll(); err != nil {
		log.Warn("Store auto migration failed", "error", err)
	}
	theDB := storeService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	documentRepo := repos.NewDocumentRepo(theDB, log)
	candidateRepo := repos.NewCandidateRepo(theDB, log)
	claimRepo := repos.NewClaimRepo(theDB, log)
	correctionRepo := repos.NewCorrectionRepo(theDB, log)
	vocabularyRepo := repos.NewVocabularyRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	vocabularyService := services.NewVocabularyService(theDB, log, vocabularyRepo)
	annotationService := services.NewAnnotationService(
		theDB,
		log,
		claimRepo,
		documentRepo,
		candidateRepo,
		correctionRepo,
		vocabularyService,
		time.Duration(claimExpiryMinutes)*time.Minute,
	)
	statsService := services.NewStatsService(theDB, log, documentRepo, claimRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	annotationHandler := handlers.NewAnnotationHandler(annotationService)
	vocabularyHandler := handlers.NewVocabularyHandler(vocabularyService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Middleware
	operatorMiddleware := middleware.NewOperatorMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AnnotationHandler:  annotationHandler,
		VocabularyHandler:  vocabularyHandler,
		StatsHandler:       statsHandler,
		OperatorMiddleware: operatorMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
