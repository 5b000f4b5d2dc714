// Package api provides the HTTP handlers for the catalog
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/moviecat/internal/api"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/service"
)

// maxPageSize caps the limit query parameter on listings
const maxPageSize = 500

// Handler provides HTTP handlers for catalog operations
type Handler struct {
	catalog *service.CatalogService
}

// NewHandler creates a new API handler
func NewHandler(catalog *service.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

// ListMovies handles GET /api/movies
//
// Query parameters:
//   - limit: Number of results per page
//   - offset: Number of results to skip
func (h *Handler) ListMovies(c *gin.Context) {
	limit, offset, err := api.Pagination(c, maxPageSize)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	movies, err := h.catalog.ListMovies(c.Request.Context(), repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /api/movies/:id
func (h *Handler) GetMovie(c *gin.Context) {
	id, err := api.UintParam(c, "id")
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	movie, err := h.catalog.GetMovie(c.Request.Context(), id)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// GetMovieName handles GET /api/movie/:id and returns {id, name}
func (h *Handler) GetMovieName(c *gin.Context) {
	id, err := api.UintParam(c, "id")
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	name, err := h.catalog.MovieName(c.Request.Context(), id)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, name)
}

// ListSequels handles GET /api/sequels
func (h *Handler) ListSequels(c *gin.Context) {
	limit, offset, err := api.Pagination(c, maxPageSize)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	sequels, err := h.catalog.ListSequels(c.Request.Context(), repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sequels)
}

// GetSequel handles GET /api/sequels/:id
func (h *Handler) GetSequel(c *gin.Context) {
	id, err := api.UintParam(c, "id")
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	sequel, err := h.catalog.GetSequel(c.Request.Context(), id)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sequel)
}

// RecentlyReleased handles GET /api/recently-released
//
// Response: {recently_released_movies: [Movie], recently_released_sequels: [Sequel]}
func (h *Handler) RecentlyReleased(c *gin.Context) {
	recent, err := h.catalog.RecentlyReleased(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, recent)
}

// MostPopular handles GET /api/most-popular
//
// Response: {tmdb_popular_movies: [Movie]}
func (h *Handler) MostPopular(c *gin.Context) {
	movies, err := h.catalog.MostPopular(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tmdb_popular_movies": movies})
}

// Suggestions handles GET /api/suggestions?q=
func (h *Handler) Suggestions(c *gin.Context) {
	suggestions, err := h.catalog.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Search handles GET /api/search?q=
//
// Response: {results: [{title, description, image_url}]}
func (h *Handler) Search(c *gin.Context) {
	results, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// MovieSequels handles GET /api/titles/:movie_name/sequels
func (h *Handler) MovieSequels(c *gin.Context) {
	sequels, err := h.catalog.SequelsForMovie(c.Request.Context(), c.Param("movie_name"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sequels)
}

// MovieDetails handles GET /api/titles/:movie_name/movie-details
func (h *Handler) MovieDetails(c *gin.Context) {
	name := c.Param("movie_name")
	if name == "" {
		api.RespondWithValidationError(c, "No movie name provided")
		return
	}

	movie, err := h.catalog.MovieDetails(c.Request.Context(), name)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}
