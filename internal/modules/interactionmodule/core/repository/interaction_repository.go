// Package repository provides data access for ratings and user histories
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mantonx/moviecat/internal/database"
	interactionerrors "github.com/mantonx/moviecat/internal/modules/interactionmodule/errors"
)

// InteractionRepository handles rating, watch and search history rows
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// UpsertRating stores rating keyed by (movie, user). An existing row keeps
// its created_at. It reports whether a new row was created. A uniqueness
// violation is returned as a conflict so the caller can retry.
func (r *InteractionRepository) UpsertRating(ctx context.Context, rating *database.RatingReview) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing database.RatingReview
	err := db.Where("movie_id = ? AND logged_id = ?", rating.MovieID, rating.LoggedID).First(&existing).Error
	switch {
	case err == nil:
		return false, r.updateRating(db, &existing, rating)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, interactionerrors.DatabaseError("upsert_rating", err)
	}

	row := *rating
	row.ID = 0
	row.Movie = nil
	result := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "logged_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, interactionerrors.Conflict("upsert_rating", result.Error)
		}
		return false, interactionerrors.DatabaseError("upsert_rating", result.Error)
	}

	// Another writer inserted the pair after our lookup; apply ours as an update.
	if result.RowsAffected == 0 {
		err := db.Where("movie_id = ? AND logged_id = ?", rating.MovieID, rating.LoggedID).First(&existing).Error
		if err != nil {
			return false, interactionerrors.Conflict("upsert_rating", err)
		}
		return false, r.updateRating(db, &existing, rating)
	}

	if err := r.reloadRating(db, rating); err != nil {
		return false, err
	}
	return true, nil
}

func (r *InteractionRepository) updateRating(db *gorm.DB, existing, rating *database.RatingReview) error {
	err := db.Model(&database.RatingReview{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
		"rating":      rating.Rating,
		"review":      rating.Review,
		"logged_name": rating.LoggedName,
		"updated_at":  time.Now(),
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return interactionerrors.Conflict("update_rating", err)
		}
		return interactionerrors.DatabaseError("update_rating", err)
	}
	return r.reloadRating(db, rating)
}

func (r *InteractionRepository) reloadRating(db *gorm.DB, rating *database.RatingReview) error {
	var stored database.RatingReview
	if err := db.Where("movie_id = ? AND logged_id = ?", rating.MovieID, rating.LoggedID).First(&stored).Error; err != nil {
		return interactionerrors.DatabaseError("reload_rating", err)
	}
	*rating = stored
	return nil
}

// ReviewsForMovie lists a movie's reviews, newest first
func (r *InteractionRepository) ReviewsForMovie(ctx context.Context, movieID uint) ([]database.RatingReview, error) {
	return r.listReviews(ctx, "reviews_for_movie", "movie_id = ?", movieID)
}

// ReviewsByUser lists a user's reviews, newest first
func (r *InteractionRepository) ReviewsByUser(ctx context.Context, loggedID int) ([]database.RatingReview, error) {
	return r.listReviews(ctx, "reviews_by_user", "logged_id = ?", loggedID)
}

// ListReviews lists every review, newest first
func (r *InteractionRepository) ListReviews(ctx context.Context) ([]database.RatingReview, error) {
	return r.listReviews(ctx, "list_reviews", "")
}

func (r *InteractionRepository) listReviews(ctx context.Context, op, where string, args ...interface{}) ([]database.RatingReview, error) {
	reviews := []database.RatingReview{}
	query := r.db.WithContext(ctx)
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, interactionerrors.DatabaseError(op, err)
	}
	return reviews, nil
}

// RatedMovies returns the movies the user has rated, in movie id order
func (r *InteractionRepository) RatedMovies(ctx context.Context, loggedID int) ([]database.Movie, error) {
	movies := []database.Movie{}
	err := r.db.WithContext(ctx).
		Joins("JOIN rating_reviews ON rating_reviews.movie_id = movies.id").
		Where("rating_reviews.logged_id = ?", loggedID).
		Order("movies.id ASC").
		Find(&movies).Error
	if err != nil {
		return nil, interactionerrors.DatabaseError("rated_movies", err)
	}
	return movies, nil
}

// AddWatch appends a watch history row
func (r *InteractionRepository) AddWatch(ctx context.Context, entry *database.WatchHistory) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return interactionerrors.DatabaseError("add_watch", err)
	}
	return nil
}

// WatchHistory lists watch rows, newest first. A zero loggedID lists all
// users.
func (r *InteractionRepository) WatchHistory(ctx context.Context, loggedID int) ([]database.WatchHistory, error) {
	rows := []database.WatchHistory{}
	if err := historyQuery(r.db.WithContext(ctx), loggedID).Find(&rows).Error; err != nil {
		return nil, interactionerrors.DatabaseError("watch_history", err)
	}
	return rows, nil
}

// ClearWatchHistory deletes a user's watch rows and returns how many went
func (r *InteractionRepository) ClearWatchHistory(ctx context.Context, loggedID int) (int64, error) {
	result := r.db.WithContext(ctx).Where("logged_id = ?", loggedID).Delete(&database.WatchHistory{})
	if result.Error != nil {
		return 0, interactionerrors.DatabaseError("clear_watch_history", result.Error)
	}
	return result.RowsAffected, nil
}

// AddSearch appends a search history row
func (r *InteractionRepository) AddSearch(ctx context.Context, entry *database.SearchHistory) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return interactionerrors.DatabaseError("add_search", err)
	}
	return nil
}

// SearchHistory lists search rows, newest first. A zero loggedID lists all
// users.
func (r *InteractionRepository) SearchHistory(ctx context.Context, loggedID int) ([]database.SearchHistory, error) {
	rows := []database.SearchHistory{}
	if err := historyQuery(r.db.WithContext(ctx), loggedID).Find(&rows).Error; err != nil {
		return nil, interactionerrors.DatabaseError("search_history", err)
	}
	return rows, nil
}

// ClearSearchHistory deletes a user's search rows and returns how many went
func (r *InteractionRepository) ClearSearchHistory(ctx context.Context, loggedID int) (int64, error) {
	result := r.db.WithContext(ctx).Where("logged_id = ?", loggedID).Delete(&database.SearchHistory{})
	if result.Error != nil {
		return 0, interactionerrors.DatabaseError("clear_search_history", result.Error)
	}
	return result.RowsAffected, nil
}

func historyQuery(db *gorm.DB, loggedID int) *gorm.DB {
	if loggedID > 0 {
		return db.Where("logged_id = ?", loggedID).Order("watched_at DESC").Order("id DESC")
	}
	return db.Order("id ASC")
}
