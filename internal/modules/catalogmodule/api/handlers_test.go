package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/database/dbtest"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/service"
)

func setupRouter(t *testing.T) (*gin.Engine, *repository.CatalogRepository, *service.CatalogService) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewCatalogRepository(dbtest.Open(t))
	svc := service.NewCatalogService(repo, service.Limits{RecentWindowMonths: 3, TopRatedLimit: 2, SuggestionLimit: 4}, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api"), NewHandler(svc))
	return router, repo, svc
}

func get(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestGetMovie(t *testing.T) {
	router, repo, _ := setupRouter(t)
	movie := &database.Movie{Title: "Heat", Director: database.StringPtr("Michael Mann")}
	require.NoError(t, repo.UpsertMovieWithSequels(context.Background(), movie, []database.Sequel{{Title: "Heat 2", Genre: "Crime"}}))

	w, body := get(t, router, "/api/movies/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Heat", body["title"])
	assert.Equal(t, "Michael Mann", body["director"])
	assert.Nil(t, body["release_date"])
	sequels := body["sequels"].([]interface{})
	require.Len(t, sequels, 1)
	assert.Equal(t, float64(movie.ID), sequels[0].(map[string]interface{})["movie"])
}

func TestGetMovieNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)

	w, body := get(t, router, "/api/movies/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Movie not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])

	w, body = get(t, router, "/api/movies/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", body["error"])

	w, body = get(t, router, "/api/sequels/9")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sequel not found", body["error"])
}

func TestGetMovieName(t *testing.T) {
	router, repo, _ := setupRouter(t)
	require.NoError(t, repo.UpsertMovie(context.Background(), &database.Movie{Title: "Alien"}))

	w, body := get(t, router, "/api/movie/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "Alien"}, body)
}

func TestListMoviesPagination(t *testing.T) {
	router, repo, _ := setupRouter(t)
	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, repo.UpsertMovie(context.Background(), &database.Movie{Title: title}))
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/movies?limit=2&offset=1", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var movies []database.Movie
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movies))
	require.Len(t, movies, 2)
	assert.Equal(t, "B", movies[0].Title)

	w, _ = get(t, router, "/api/movies?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmptyListsAreArrays(t *testing.T) {
	router, _, _ := setupRouter(t)

	for _, path := range []string{"/api/movies", "/api/sequels"} {
		w, _ := get(t, router, path)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String(), path)
	}

	w, _ := get(t, router, "/api/recently-released")
	assert.JSONEq(t, `{"recently_released_movies":[],"recently_released_sequels":[]}`, w.Body.String())

	w, _ = get(t, router, "/api/most-popular")
	assert.JSONEq(t, `{"tmdb_popular_movies":[]}`, w.Body.String())

	w, _ = get(t, router, "/api/search?q=nothing")
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w, _ = get(t, router, "/api/suggestions")
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
}

func TestRecentlyReleased(t *testing.T) {
	router, repo, svc := setupRouter(t)
	ctx := context.Background()
	release := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertMovie(ctx, &database.Movie{Title: "New", ReleaseDate: &release}))
	svc.SetClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })

	w, body := get(t, router, "/api/recently-released")
	assert.Equal(t, http.StatusOK, w.Code)
	movies := body["recently_released_movies"].([]interface{})
	require.Len(t, movies, 1)
	assert.Equal(t, "2024-05-01T00:00:00Z", movies[0].(map[string]interface{})["release_date"])
}

func TestMostPopularAndSearch(t *testing.T) {
	router, repo, _ := setupRouter(t)
	ctx := context.Background()
	for title, pop := range map[string]float64{"Low": 1, "High": 9, "Mid": 5} {
		require.NoError(t, repo.UpsertMovie(ctx, &database.Movie{
			Title:          title,
			Description:    database.StringPtr(title + " movie"),
			TMDBPopularity: database.Float64Ptr(pop),
		}))
	}

	w, body := get(t, router, "/api/most-popular")
	assert.Equal(t, http.StatusOK, w.Code)
	movies := body["tmdb_popular_movies"].([]interface{})
	require.Len(t, movies, 2)
	assert.Equal(t, "High", movies[0].(map[string]interface{})["title"])
	assert.Equal(t, "Mid", movies[1].(map[string]interface{})["title"])

	w, body = get(t, router, "/api/search?q=HIGH")
	assert.Equal(t, http.StatusOK, w.Code)
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, map[string]interface{}{"title": "High", "description": "High movie", "image_url": nil}, results[0])

	w, body = get(t, router, "/api/suggestions?q=i")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []interface{}{"High", "Mid"}, body["suggestions"])
}

func TestTitleRoutes(t *testing.T) {
	router, repo, _ := setupRouter(t)
	require.NoError(t, repo.UpsertMovieWithSequels(context.Background(), &database.Movie{Title: "Toy Story"}, []database.Sequel{
		{Title: "Toy Story 2", Genre: "Animation"},
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/titles/Toy%20Story/sequels", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var sequels []database.Sequel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sequels))
	require.Len(t, sequels, 1)
	assert.Equal(t, "Toy Story 2", sequels[0].Title)

	w, body := get(t, router, "/api/titles/Toy%20Story/movie-details")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Toy Story", body["title"])

	w, body = get(t, router, "/api/titles/Cars/movie-details")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Movie not found", body["error"])
}
