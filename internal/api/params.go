package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/moviecat/internal/types"
)

// ErrUserIDRequired is returned when a request names no user
var ErrUserIDRequired = types.NewSentinel(types.ErrorCodeValidation, "User ID is required")

// LoggedIDFromQuery reads the caller identity from user_id, falling back
// to logged_id.
func LoggedIDFromQuery(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("logged_id"))
	}
	return parseLoggedID(raw)
}

// LoggedIDFromParam reads the caller identity from a path parameter.
func LoggedIDFromParam(c *gin.Context, name string) (int, error) {
	return parseLoggedID(strings.TrimSpace(c.Param(name)))
}

func parseLoggedID(raw string) (int, error) {
	if raw == "" {
		return 0, ErrUserIDRequired
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError("User ID must be a positive integer", raw)
	}
	return id, nil
}

// UintParam parses a positive integer path parameter.
func UintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError("invalid "+name, raw)
	}
	return uint(id), nil
}

// Pagination reads limit and offset query parameters. A limit of zero means
// no limit.
func Pagination(c *gin.Context, maxLimit int) (limit, offset int, err error) {
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, types.NewValidationError("invalid limit", v)
		}
	}
	if v := c.Query("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, types.NewValidationError("invalid offset", v)
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit, offset, nil
}
