package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.POST("/properties", handler.CreateProperty)
		api.POST("/properties/:id/view", handler.RecordView)
		api.PUT("/properties/:id/status", handler.UpdateStatus)

		api.GET("/history/:userId", handler.GetHistory)
		api.GET("/history/:userId/recent", handler.GetRecentActivities)
		api.GET("/history/:userId/type/:type", handler.GetActivitiesByType)
		api.GET("/history/:userId/properties", handler.GetPropertyActivities)
		api.GET("/history/:userId/searches", handler.GetSearchActivities)

		api.GET("/search", handler.Search)
		api.GET("/search/recommendations/:userId", handler.GetRecommendations)
		api.GET("/search/suggestions", handler.GetSuggestions)
		api.GET("/search/featured", handler.GetFeatured)
	}
}
