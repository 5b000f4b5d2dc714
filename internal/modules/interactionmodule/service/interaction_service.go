// Package service validates and records user interactions with movies
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/metrics"
	catalogerrors "github.com/mantonx/moviecat/internal/modules/catalogmodule/errors"
	interactionerrors "github.com/mantonx/moviecat/internal/modules/interactionmodule/errors"
)

// Store persists ratings and histories
type Store interface {
	UpsertRating(ctx context.Context, rating *database.RatingReview) (bool, error)
	ReviewsForMovie(ctx context.Context, movieID uint) ([]database.RatingReview, error)
	ReviewsByUser(ctx context.Context, loggedID int) ([]database.RatingReview, error)
	ListReviews(ctx context.Context) ([]database.RatingReview, error)
	AddWatch(ctx context.Context, entry *database.WatchHistory) error
	WatchHistory(ctx context.Context, loggedID int) ([]database.WatchHistory, error)
	ClearWatchHistory(ctx context.Context, loggedID int) (int64, error)
	AddSearch(ctx context.Context, entry *database.SearchHistory) error
	SearchHistory(ctx context.Context, loggedID int) ([]database.SearchHistory, error)
	ClearSearchHistory(ctx context.Context, loggedID int) (int64, error)
}

// Movies resolves the movie an interaction refers to
type Movies interface {
	GetMovie(ctx context.Context, id uint) (*database.Movie, error)
	MovieExists(ctx context.Context, id uint) (bool, error)
}

// Rules holds the configurable interaction limits
type Rules struct {
	MaxRating   int
	RateRetries int
}

// RulesFromConfig extracts the interaction rules from cfg
func RulesFromConfig(cfg config.InteractionConfig) Rules {
	return Rules{MaxRating: cfg.MaxRating, RateRetries: cfg.RateRetries}
}

// RateRequest is one user's score for a movie
type RateRequest struct {
	MovieID    uint
	LoggedID   int
	LoggedName *string
	Rating     int
	Review     *string
}

// RateResult is the stored rating and whether it was new
type RateResult struct {
	Rating  *database.RatingReview
	Created bool
}

// InteractionService records ratings, watches and searches
type InteractionService struct {
	store  Store
	movies Movies
	rules  atomic.Pointer[Rules]
	log    hclog.Logger
}

// NewInteractionService creates an interaction service
func NewInteractionService(store Store, movies Movies, rules Rules, log hclog.Logger) *InteractionService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	s := &InteractionService{store: store, movies: movies, log: log}
	s.SetRules(rules)
	return s
}

// SetRules replaces the interaction rules
func (s *InteractionService) SetRules(rules Rules) {
	s.rules.Store(&rules)
}

// Rules returns the current interaction rules
func (s *InteractionService) Rules() Rules {
	return *s.rules.Load()
}

// Rate stores a rating, replacing the user's previous rating of the movie
func (s *InteractionService) Rate(ctx context.Context, req RateRequest) (*RateResult, error) {
	rules := s.Rules()
	if err := validateIdentity(req.MovieID, req.LoggedID); err != nil {
		return nil, err
	}
	if req.Rating < 1 || req.Rating > rules.MaxRating {
		return nil, interactionerrors.Invalid(interactionerrors.ErrInvalidRating,
			fmt.Sprintf("Rating must be between 1 and %d", rules.MaxRating))
	}
	if err := s.requireMovie(ctx, "rate", req.MovieID); err != nil {
		return nil, err
	}

	rating := &database.RatingReview{
		MovieID:    req.MovieID,
		LoggedID:   req.LoggedID,
		LoggedName: trimmed(req.LoggedName),
		Rating:     req.Rating,
		Review:     req.Review,
	}

	var lastErr error
	for attempt := 0; attempt <= rules.RateRetries; attempt++ {
		created, err := s.store.UpsertRating(ctx, rating)
		if err == nil {
			outcome := "updated"
			if created {
				outcome = "created"
			}
			metrics.Ratings.WithLabelValues(outcome).Inc()
			s.log.Debug("rating stored", "movie", req.MovieID, "logged_id", req.LoggedID, "outcome", outcome)
			return &RateResult{Rating: rating, Created: created}, nil
		}
		if !interactionerrors.IsConflict(err) {
			return nil, err
		}
		lastErr = err
		s.log.Debug("rating conflict, retrying", "movie", req.MovieID, "logged_id", req.LoggedID, "attempt", attempt+1)
	}

	metrics.Ratings.WithLabelValues("conflict").Inc()
	s.log.Warn("rating retries exhausted", "movie", req.MovieID, "logged_id", req.LoggedID, "error", lastErr)
	return nil, lastErr
}

func (s *InteractionService) requireMovie(ctx context.Context, op string, id uint) error {
	ok, err := s.movies.MovieExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return catalogerrors.NotFound(catalogerrors.ErrorTypeMovie, op, strconv.FormatUint(uint64(id), 10))
	}
	return nil
}

// Reviews lists reviews for a movie when movieID is set, otherwise for a
// user when loggedID is set, otherwise all reviews
func (s *InteractionService) Reviews(ctx context.Context, movieID uint, loggedID int) ([]database.RatingReview, error) {
	switch {
	case movieID > 0:
		return s.store.ReviewsForMovie(ctx, movieID)
	case loggedID > 0:
		return s.store.ReviewsByUser(ctx, loggedID)
	default:
		return s.store.ListReviews(ctx)
	}
}

// RecordWatch appends a watch entry for an existing movie
func (s *InteractionService) RecordWatch(ctx context.Context, movieID uint, loggedID int, loggedName *string) (*database.WatchHistory, error) {
	if err := validateIdentity(movieID, loggedID); err != nil {
		return nil, err
	}
	if err := s.requireMovie(ctx, "record_watch", movieID); err != nil {
		return nil, err
	}

	entry := &database.WatchHistory{MovieID: movieID, LoggedID: loggedID, LoggedName: trimmed(loggedName)}
	if err := s.store.AddWatch(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// WatchHistory lists a user's watches, newest first
func (s *InteractionService) WatchHistory(ctx context.Context, loggedID int) ([]database.WatchHistory, error) {
	return s.store.WatchHistory(ctx, loggedID)
}

// ListWatchHistory lists every watch entry
func (s *InteractionService) ListWatchHistory(ctx context.Context) ([]database.WatchHistory, error) {
	return s.store.WatchHistory(ctx, 0)
}

// ClearWatchHistory deletes a user's watches
func (s *InteractionService) ClearWatchHistory(ctx context.Context, loggedID int) (int64, error) {
	if loggedID <= 0 {
		return 0, interactionerrors.Invalid(interactionerrors.ErrInvalidInteraction, "User ID is required")
	}
	n, err := s.store.ClearWatchHistory(ctx, loggedID)
	if err != nil {
		return 0, err
	}
	s.log.Info("watch history cleared", "logged_id", loggedID, "deleted", n)
	return n, nil
}

// RecordSearch appends a search entry. An empty movieName is replaced by
// the movie's title.
func (s *InteractionService) RecordSearch(ctx context.Context, movieID uint, loggedID int, loggedName, movieName *string) (*database.SearchHistory, error) {
	if err := validateIdentity(movieID, loggedID); err != nil {
		return nil, err
	}
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	name := trimmed(movieName)
	if name == nil {
		name = &movie.Title
	}
	entry := &database.SearchHistory{MovieID: movieID, LoggedID: loggedID, LoggedName: trimmed(loggedName), MovieName: name}
	if err := s.store.AddSearch(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SearchHistory lists a user's searches, newest first
func (s *InteractionService) SearchHistory(ctx context.Context, loggedID int) ([]database.SearchHistory, error) {
	return s.store.SearchHistory(ctx, loggedID)
}

// ListSearchHistory lists every search entry
func (s *InteractionService) ListSearchHistory(ctx context.Context) ([]database.SearchHistory, error) {
	return s.store.SearchHistory(ctx, 0)
}

// ClearSearchHistory deletes a user's searches
func (s *InteractionService) ClearSearchHistory(ctx context.Context, loggedID int) (int64, error) {
	if loggedID <= 0 {
		return 0, interactionerrors.Invalid(interactionerrors.ErrInvalidInteraction, "User ID is required")
	}
	n, err := s.store.ClearSearchHistory(ctx, loggedID)
	if err != nil {
		return 0, err
	}
	s.log.Info("search history cleared", "logged_id", loggedID, "deleted", n)
	return n, nil
}

func validateIdentity(movieID uint, loggedID int) error {
	if loggedID <= 0 {
		return interactionerrors.Invalid(interactionerrors.ErrInvalidInteraction, "User ID is required")
	}
	if movieID == 0 {
		return interactionerrors.Invalid(interactionerrors.ErrInvalidInteraction, "Movie ID is required")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return database.StringPtr(strings.TrimSpace(*s))
}
