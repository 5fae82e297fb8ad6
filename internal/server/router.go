package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/medlabel/medlabel-backend/internal/handlers"
	"github.com/medlabel/medlabel-backend/internal/middleware"
)

type RouterConfig struct {
	AnnotationHandler  *handlers.AnnotationHandler
	VocabularyHandler  *handlers.VocabularyHandler
	StatsHandler       *handlers.StatsHandler
	OperatorMiddleware *middleware.OperatorMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Operator-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.OperatorMiddleware.RequireOperator())
	// Annotation workflow
	api.GET("/assignment", cfg.AnnotationHandler.GetAssignment)
	api.POST("/assignment/:docID/correction", cfg.AnnotationHandler.SubmitCorrection)
	api.POST("/assignment/:docID/discard", cfg.AnnotationHandler.DiscardAssignment)
	// Vocabularies
	api.GET("/vocabulary/:category", cfg.VocabularyHandler.List)
	api.POST("/vocabulary/:category", cfg.VocabularyHandler.Add)
	// Progress
	api.GET("/stats", cfg.StatsHandler.Overview)

	return router
}
