// Package api provides the HTTP handler for recommendations
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/moviecat/internal/api"
	"github.com/mantonx/moviecat/internal/modules/recommendationmodule/core"
)

// Handler serves recommendation requests
type Handler struct {
	engine *core.Engine
}

// NewHandler creates a new API handler
func NewHandler(engine *core.Engine) *Handler {
	return &Handler{engine: engine}
}

// Recommendations handles GET /api/recommendations/:username
//
// Query parameters:
//   - logged_id or user_id: The user whose ratings drive the lists (required)
//
// Response: {username, recommended_movies: [Movie], recommended_sequels: [Sequel]}
func (h *Handler) Recommendations(c *gin.Context) {
	loggedID, err := api.LoggedIDFromQuery(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	recs, err := h.engine.Recommend(c.Request.Context(), loggedID)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":            c.Param("username"),
		"recommended_movies":  recs.Movies,
		"recommended_sequels": recs.Sequels,
	})
}

// RegisterRoutes registers the recommendation route on the /api group
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/recommendations/:username", handler.Recommendations)
}
