// Package api provides the HTTP handlers for ratings and histories
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/moviecat/internal/api"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule/service"
	"github.com/mantonx/moviecat/internal/types"
)

// Handler provides HTTP handlers for interaction operations
type Handler struct {
	interactions *service.InteractionService
}

// NewHandler creates a new API handler
func NewHandler(interactions *service.InteractionService) *Handler {
	return &Handler{interactions: interactions}
}

type rateBody struct {
	Movie      uint    `json:"movie"`
	LoggedID   int     `json:"logged_id"`
	LoggedName *string `json:"logged_name"`
	Rating     int     `json:"rating"`
	Review     *string `json:"review"`
}

type historyBody struct {
	Movie      uint    `json:"movie"`
	LoggedID   int     `json:"logged_id"`
	LoggedName *string `json:"logged_name"`
	MovieName  *string `json:"movie_name"`
}

// Rate handles POST /api/rating-reviews
//
// Responds 201 when the rating is new and 200 when it replaced an earlier one.
func (h *Handler) Rate(c *gin.Context) {
	var body rateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		api.RespondWithValidationError(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.interactions.Rate(c.Request.Context(), service.RateRequest{
		MovieID:    body.Movie,
		LoggedID:   body.LoggedID,
		LoggedName: body.LoggedName,
		Rating:     body.Rating,
		Review:     body.Review,
	})
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result.Rating)
}

// ListReviews handles GET /api/rating-reviews/list
//
// Query parameters:
//   - movie_id: Reviews of one movie (takes precedence)
//   - user_id or logged_id: Reviews by one user
func (h *Handler) ListReviews(c *gin.Context) {
	var movieID uint
	if raw := strings.TrimSpace(c.Query("movie_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			api.RespondWithError(c, types.NewValidationError("invalid movie_id", raw))
			return
		}
		movieID = uint(id)
	}

	var loggedID int
	if movieID == 0 && (c.Query("user_id") != "" || c.Query("logged_id") != "") {
		id, err := api.LoggedIDFromQuery(c)
		if err != nil {
			api.RespondWithError(c, err)
			return
		}
		loggedID = id
	}

	reviews, err := h.interactions.Reviews(c.Request.Context(), movieID, loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// RecordWatch handles POST /api/watch-history
func (h *Handler) RecordWatch(c *gin.Context) {
	var body historyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		api.RespondWithValidationError(c, "Invalid request body", err.Error())
		return
	}

	entry, err := h.interactions.RecordWatch(c.Request.Context(), body.Movie, body.LoggedID, body.LoggedName)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListWatchHistory handles GET /api/watch-history
func (h *Handler) ListWatchHistory(c *gin.Context) {
	rows, err := h.interactions.ListWatchHistory(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UserWatchHistory handles GET /api/list-watch-history?user_id=
func (h *Handler) UserWatchHistory(c *gin.Context) {
	loggedID, err := api.LoggedIDFromQuery(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	rows, err := h.interactions.WatchHistory(c.Request.Context(), loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ClearWatchHistory handles POST /api/clear-watch-history?user_id=
func (h *Handler) ClearWatchHistory(c *gin.Context) {
	loggedID, err := api.LoggedIDFromQuery(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	deleted, err := h.interactions.ClearWatchHistory(c.Request.Context(), loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Watch history cleared successfully.", "deleted": deleted})
}

// RecordSearch handles POST /api/search-history
func (h *Handler) RecordSearch(c *gin.Context) {
	var body historyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		api.RespondWithValidationError(c, "Invalid request body", err.Error())
		return
	}

	entry, err := h.interactions.RecordSearch(c.Request.Context(), body.Movie, body.LoggedID, body.LoggedName, body.MovieName)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListSearchHistory handles GET /api/search-history
func (h *Handler) ListSearchHistory(c *gin.Context) {
	rows, err := h.interactions.ListSearchHistory(c.Request.Context())
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UserSearchHistory handles GET /api/list-search-history?user_id= and
// GET /api/search-history/:id, where :id names the user
func (h *Handler) UserSearchHistory(c *gin.Context) {
	var (
		loggedID int
		err      error
	)
	if c.Param("id") != "" {
		loggedID, err = api.LoggedIDFromParam(c, "id")
	} else {
		loggedID, err = api.LoggedIDFromQuery(c)
	}
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	rows, err := h.interactions.SearchHistory(c.Request.Context(), loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ClearSearchHistory handles POST /api/clear-search-history?user_id=
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	loggedID, err := api.LoggedIDFromQuery(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	deleted, err := h.interactions.ClearSearchHistory(c.Request.Context(), loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Search history cleared successfully.", "deleted": deleted})
}
