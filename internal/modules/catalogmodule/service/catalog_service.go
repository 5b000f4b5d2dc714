// Package service implements the catalog read operations served over HTTP
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
)

// Limits bounds the catalog listings
type Limits struct {
	RecentWindowMonths int
	TopRatedLimit      int
	SuggestionLimit    int
}

// LimitsFromConfig extracts the catalog limits from cfg
func LimitsFromConfig(cfg config.CatalogConfig) Limits {
	return Limits{
		RecentWindowMonths: cfg.RecentWindowMonths,
		TopRatedLimit:      cfg.TopRatedLimit,
		SuggestionLimit:    cfg.SuggestionLimit,
	}
}

// RecentlyReleased groups the recent movies and sequels
type RecentlyReleased struct {
	Movies  []database.Movie  `json:"recently_released_movies"`
	Sequels []database.Sequel `json:"recently_released_sequels"`
}

// MovieName is the short form of a movie
type MovieName struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CatalogService serves catalog queries with the configured limits
type CatalogService struct {
	repo   *repository.CatalogRepository
	limits atomic.Pointer[Limits]
	now    func() time.Time
	log    hclog.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(repo *repository.CatalogRepository, limits Limits, log hclog.Logger) *CatalogService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	s := &CatalogService{repo: repo, now: time.Now, log: log}
	s.SetLimits(limits)
	return s
}

// SetLimits replaces the listing limits
func (s *CatalogService) SetLimits(limits Limits) {
	s.limits.Store(&limits)
}

// Limits returns the current listing limits
func (s *CatalogService) Limits() Limits {
	return *s.limits.Load()
}

// SetClock overrides the time source used for release windows
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// Repository returns the underlying store
func (s *CatalogService) Repository() *repository.CatalogRepository {
	return s.repo
}

// ListMovies lists movies with their sequels
func (s *CatalogService) ListMovies(ctx context.Context, opts repository.ListOptions) ([]database.Movie, error) {
	return s.repo.ListMovies(ctx, opts)
}

// GetMovie returns one movie with its sequels
func (s *CatalogService) GetMovie(ctx context.Context, id uint) (*database.Movie, error) {
	return s.repo.GetMovie(ctx, id)
}

// MovieName returns a movie's id and title
func (s *CatalogService) MovieName(ctx context.Context, id uint) (*MovieName, error) {
	movie, err := s.repo.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MovieName{ID: movie.ID, Name: movie.Title}, nil
}

// ListSequels lists sequels
func (s *CatalogService) ListSequels(ctx context.Context, opts repository.ListOptions) ([]database.Sequel, error) {
	return s.repo.ListSequels(ctx, opts)
}

// GetSequel returns one sequel
func (s *CatalogService) GetSequel(ctx context.Context, id uint) (*database.Sequel, error) {
	return s.repo.GetSequel(ctx, id)
}

// RecentlyReleased returns the movies and sequels released within the window
func (s *CatalogService) RecentlyReleased(ctx context.Context) (*RecentlyReleased, error) {
	months := s.Limits().RecentWindowMonths
	now := s.now()

	movies, err := s.repo.RecentlyReleasedMovies(ctx, months, now)
	if err != nil {
		return nil, err
	}
	sequels, err := s.repo.RecentlyReleasedSequels(ctx, months, now)
	if err != nil {
		return nil, err
	}

	s.log.Debug("recently released", "months", months, "movies", len(movies), "sequels", len(sequels))
	return &RecentlyReleased{Movies: movies, Sequels: sequels}, nil
}

// MostPopular returns the top movies by provider popularity
func (s *CatalogService) MostPopular(ctx context.Context) ([]database.Movie, error) {
	return s.repo.TopRated(ctx, s.Limits().TopRatedLimit)
}

// Suggestions returns title suggestions for a partial query
func (s *CatalogService) Suggestions(ctx context.Context, query string) ([]string, error) {
	return s.repo.Suggestions(ctx, query, s.Limits().SuggestionLimit)
}

// Search matches movies by title or description
func (s *CatalogService) Search(ctx context.Context, query string) ([]repository.SearchResult, error) {
	return s.repo.SearchMovies(ctx, query)
}

// MovieDetails returns a movie and its sequels by title
func (s *CatalogService) MovieDetails(ctx context.Context, title string) (*database.Movie, error) {
	return s.repo.FindMovieByTitle(ctx, title)
}

// SequelsForMovie lists the sequels of a movie by title
func (s *CatalogService) SequelsForMovie(ctx context.Context, title string) ([]database.Sequel, error) {
	return s.repo.SequelsForMovie(ctx, title)
}
