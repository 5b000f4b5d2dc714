package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers rating and history routes on the /api group
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.POST("/rating-reviews", handler.Rate)
	router.GET("/rating-reviews/list", handler.ListReviews)

	router.POST("/watch-history", handler.RecordWatch)
	router.GET("/watch-history", handler.ListWatchHistory)
	router.GET("/list-watch-history", handler.UserWatchHistory)
	router.POST("/clear-watch-history", handler.ClearWatchHistory)

	router.POST("/search-history", handler.RecordSearch)
	router.GET("/search-history", handler.ListSearchHistory)
	router.GET("/search-history/:id", handler.UserSearchHistory)
	router.GET("/list-search-history", handler.UserSearchHistory)
	router.POST("/clear-search-history", handler.ClearSearchHistory)
}
