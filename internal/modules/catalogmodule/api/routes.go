package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all catalog routes on the /api group
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/movies", handler.ListMovies)
	router.GET("/movies/:id", handler.GetMovie)
	router.GET("/movie/:id", handler.GetMovieName)
	router.GET("/sequels", handler.ListSequels)
	router.GET("/sequels/:id", handler.GetSequel)

	router.GET("/recently-released", handler.RecentlyReleased)
	router.GET("/most-popular", handler.MostPopular)
	router.GET("/suggestions", handler.Suggestions)
	router.GET("/search", handler.Search)

	titles := router.Group("/titles/:movie_name")
	{
		titles.GET("/sequels", handler.MovieSequels)
		titles.GET("/movie-details", handler.MovieDetails)
	}
}
