// Package core computes content-based recommendations from a user's ratings.
//
// Two lists are produced. Sequels are matched on the exact genre strings of
// the movies the user rated. Movies are matched on the directors of those
// movies, excluding anything already rated, most popular first. Genres and
// directors that are missing or blank never take part in matching.
package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/metrics"
	"github.com/mantonx/moviecat/internal/types"
)

// Store is the read access the engine needs
type Store interface {
	RatedMovies(ctx context.Context, loggedID int) ([]database.Movie, error)
	MoviesByDirector(ctx context.Context, directors []string, excludeIDs []uint, limit int) ([]database.Movie, error)
	SequelsByGenre(ctx context.Context, genres []string) ([]database.Sequel, error)
}

// Recommendations holds both recommendation lists for one user
type Recommendations struct {
	Movies  []database.Movie  `json:"recommended_movies"`
	Sequels []database.Sequel `json:"recommended_sequels"`
}

// Engine produces recommendations. It holds no per-user state.
type Engine struct {
	store         Store
	directorLimit atomic.Int64
	log           hclog.Logger
}

// NewEngine creates an engine returning at most directorLimit movies
func NewEngine(store Store, directorLimit int, log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &Engine{store: store, log: log}
	e.SetDirectorLimit(directorLimit)
	return e
}

// SetDirectorLimit changes the size of the director-based list
func (e *Engine) SetDirectorLimit(limit int) {
	e.directorLimit.Store(int64(limit))
}

// DirectorLimit returns the size of the director-based list
func (e *Engine) DirectorLimit() int {
	return int(e.directorLimit.Load())
}

// RecommendSequelsByGenre returns sequels whose genre equals the genre of a
// movie the user rated
func (e *Engine) RecommendSequelsByGenre(ctx context.Context, loggedID int) ([]database.Sequel, error) {
	rated, err := e.ratedMovies(ctx, loggedID)
	if err != nil {
		return nil, err
	}
	return e.sequelsByGenre(ctx, rated)
}

// RecommendMoviesByDirector returns the most popular unrated movies by the
// directors of movies the user rated
func (e *Engine) RecommendMoviesByDirector(ctx context.Context, loggedID int) ([]database.Movie, error) {
	rated, err := e.ratedMovies(ctx, loggedID)
	if err != nil {
		return nil, err
	}
	return e.moviesByDirector(ctx, rated)
}

// Recommend computes both lists from a single read of the user's ratings
func (e *Engine) Recommend(ctx context.Context, loggedID int) (*Recommendations, error) {
	rated, err := e.ratedMovies(ctx, loggedID)
	if err != nil {
		return nil, err
	}

	movies, err := e.moviesByDirector(ctx, rated)
	if err != nil {
		return nil, err
	}
	sequels, err := e.sequelsByGenre(ctx, rated)
	if err != nil {
		return nil, err
	}

	e.log.Debug("recommendations computed", "logged_id", loggedID, "rated", len(rated),
		"movies", len(movies), "sequels", len(sequels))
	return &Recommendations{Movies: movies, Sequels: sequels}, nil
}

func (e *Engine) ratedMovies(ctx context.Context, loggedID int) ([]database.Movie, error) {
	if loggedID <= 0 {
		return nil, types.NewValidationError("User ID must be a positive integer")
	}
	rated, err := e.store.RatedMovies(ctx, loggedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rated movies: %w", err)
	}
	return rated, nil
}

func (e *Engine) sequelsByGenre(ctx context.Context, rated []database.Movie) ([]database.Sequel, error) {
	genres := distinct(rated, func(m database.Movie) *string { return m.Genre })
	if len(genres) == 0 {
		return []database.Sequel{}, nil
	}

	sequels, err := e.store.SequelsByGenre(ctx, genres)
	if err != nil {
		return nil, fmt.Errorf("failed to load sequels by genre: %w", err)
	}
	if sequels == nil {
		sequels = []database.Sequel{}
	}
	metrics.Recommendations.WithLabelValues("sequels").Inc()
	return sequels, nil
}

func (e *Engine) moviesByDirector(ctx context.Context, rated []database.Movie) ([]database.Movie, error) {
	directors := distinct(rated, func(m database.Movie) *string { return m.Director })
	if len(directors) == 0 {
		return []database.Movie{}, nil
	}

	exclude := make([]uint, 0, len(rated))
	for _, m := range rated {
		exclude = append(exclude, m.ID)
	}

	movies, err := e.store.MoviesByDirector(ctx, directors, exclude, e.DirectorLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to load movies by director: %w", err)
	}
	if movies == nil {
		movies = []database.Movie{}
	}
	metrics.Recommendations.WithLabelValues("movies").Inc()
	return movies, nil
}

// distinct collects the non-blank, known values of field in first-seen order
func distinct(movies []database.Movie, field func(database.Movie) *string) []string {
	seen := make(map[string]bool, len(movies))
	values := make([]string, 0, len(movies))
	for _, m := range movies {
		v := field(m)
		if v == nil || seen[*v] {
			continue
		}
		if s := strings.TrimSpace(*v); s == "" || s == database.UnknownAttribute {
			continue
		}
		seen[*v] = true
		values = append(values, *v)
	}
	return values
}
