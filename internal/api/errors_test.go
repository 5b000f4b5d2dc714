package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc, target string) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		c.Next()
	})
	router.Use(ErrorMiddleware())
	router.GET("/test", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body ErrorResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestRespondWithErrorMapping(t *testing.T) {
	notFound := types.NewSentinel(types.ErrorCodeNotFound, "movie not found")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"app error", types.NewNotFoundError("Movie", ""), http.StatusNotFound, "NOT_FOUND", "Movie not found"},
		{"sentinel", fmt.Errorf("catalog: %w", notFound), http.StatusNotFound, "NOT_FOUND", "movie not found"},
		{"gorm not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "NOT_FOUND", "record not found"},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict, "CONFLICT", "record already exists"},
		{"validation", types.NewValidationError("bad rating"), http.StatusBadRequest, "VALIDATION_ERROR", "bad rating"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, func(c *gin.Context) { RespondWithError(c, tt.err) }, "/test")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestRespondWithErrorStampsRequestID(t *testing.T) {
	appErr := types.NewValidationError("bad rating")
	_, body := serve(t, func(c *gin.Context) { RespondWithError(c, appErr) }, "/test")

	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, "req-1", appErr.RequestID)
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { panic("engine exploded") }, "/test")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.Equal(t, "internal server error", body.Error)
}

func TestLoggedIDFromQuery(t *testing.T) {
	handler := func(c *gin.Context) {
		id, err := LoggedIDFromQuery(c)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}

	w, body := serve(t, handler, "/test")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID is required", body.Error)

	w, _ = serve(t, handler, "/test?user_id=7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())

	w, _ = serve(t, handler, "/test?logged_id=9")
	assert.JSONEq(t, `{"id":9}`, w.Body.String())

	w, body = serve(t, handler, "/test?user_id=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}

func TestPagination(t *testing.T) {
	handler := func(c *gin.Context) {
		limit, offset, err := Pagination(c, 100)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": limit, "offset": offset})
	}

	w, _ := serve(t, handler, "/test?limit=500&offset=20")
	assert.JSONEq(t, `{"limit":100,"offset":20}`, w.Body.String())

	w, _ = serve(t, handler, "/test?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
