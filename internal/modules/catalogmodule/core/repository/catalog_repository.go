// Package repository provides data access for movies and sequels
package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mantonx/moviecat/internal/database"
	catalogerrors "github.com/mantonx/moviecat/internal/modules/catalogmodule/errors"
)

// Columns refreshed when a movie or sequel with the same natural key is
// stored again.
var (
	movieUpdateColumns  = []string{"release_date", "director", "genre", "description", "image_url", "tmdb_popularity"}
	sequelUpdateColumns = []string{"genre", "release_date", "director", "tmdb_popularity", "description", "image_url"}
)

// ListOptions pages through a listing. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// SearchResult is the projection returned by full-text search
type SearchResult struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// CatalogRepository handles all database operations for movies and sequels
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindMovieByTitle retrieves a movie and its sequels by exact title
func (r *CatalogRepository) FindMovieByTitle(ctx context.Context, title string) (*database.Movie, error) {
	var movie database.Movie
	err := r.withSequels(r.db.WithContext(ctx)).Where("title = ?", title).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogerrors.NotFound(catalogerrors.ErrorTypeMovie, "find_movie_by_title", title)
		}
		return nil, catalogerrors.DatabaseError("find_movie_by_title", err)
	}
	return &movie, nil
}

// GetMovie retrieves a movie and its sequels by ID
func (r *CatalogRepository) GetMovie(ctx context.Context, id uint) (*database.Movie, error) {
	var movie database.Movie
	err := r.withSequels(r.db.WithContext(ctx)).First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogerrors.NotFound(catalogerrors.ErrorTypeMovie, "get_movie", strconv.FormatUint(uint64(id), 10))
		}
		return nil, catalogerrors.DatabaseError("get_movie", err)
	}
	return &movie, nil
}

// MovieExists reports whether a movie with the ID is stored
func (r *CatalogRepository) MovieExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&database.Movie{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, catalogerrors.DatabaseError("movie_exists", err)
	}
	return count > 0, nil
}

// ListMovies lists movies ordered by ID
func (r *CatalogRepository) ListMovies(ctx context.Context, opts ListOptions) ([]database.Movie, error) {
	movies := []database.Movie{}
	err := paginate(r.withSequels(r.db.WithContext(ctx)), opts).Order("id ASC").Find(&movies).Error
	if err != nil {
		return nil, catalogerrors.DatabaseError("list_movies", err)
	}
	return movies, nil
}

// ListSequels lists sequels ordered by ID
func (r *CatalogRepository) ListSequels(ctx context.Context, opts ListOptions) ([]database.Sequel, error) {
	sequels := []database.Sequel{}
	if err := paginate(r.db.WithContext(ctx), opts).Order("id ASC").Find(&sequels).Error; err != nil {
		return nil, catalogerrors.DatabaseError("list_sequels", err)
	}
	return sequels, nil
}

// GetSequel retrieves a sequel by ID
func (r *CatalogRepository) GetSequel(ctx context.Context, id uint) (*database.Sequel, error) {
	var sequel database.Sequel
	if err := r.db.WithContext(ctx).First(&sequel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogerrors.NotFound(catalogerrors.ErrorTypeSequel, "get_sequel", strconv.FormatUint(uint64(id), 10))
		}
		return nil, catalogerrors.DatabaseError("get_sequel", err)
	}
	return &sequel, nil
}

// RecentlyReleasedMovies returns movies released between now minus the
// window and now, both dates inclusive, newest first
func (r *CatalogRepository) RecentlyReleasedMovies(ctx context.Context, months int, now time.Time) ([]database.Movie, error) {
	from, to := releaseWindow(months, now)
	movies := []database.Movie{}
	err := r.withSequels(r.db.WithContext(ctx)).
		Where("release_date >= ? AND release_date <= ?", from, to).
		Order("release_date DESC").Order("id ASC").
		Find(&movies).Error
	if err != nil {
		return nil, catalogerrors.DatabaseError("recently_released_movies", err)
	}
	return movies, nil
}

// RecentlyReleasedSequels returns sequels released inside the window
func (r *CatalogRepository) RecentlyReleasedSequels(ctx context.Context, months int, now time.Time) ([]database.Sequel, error) {
	from, to := releaseWindow(months, now)
	sequels := []database.Sequel{}
	err := r.db.WithContext(ctx).
		Where("release_date >= ? AND release_date <= ?", from, to).
		Order("release_date DESC").Order("id ASC").
		Find(&sequels).Error
	if err != nil {
		return nil, catalogerrors.DatabaseError("recently_released_sequels", err)
	}
	return sequels, nil
}

// TopRated returns the movies with the highest provider popularity.
// Movies without a popularity sort last.
func (r *CatalogRepository) TopRated(ctx context.Context, limit int) ([]database.Movie, error) {
	movies := []database.Movie{}
	err := byPopularity(r.withSequels(r.db.WithContext(ctx))).Limit(limit).Find(&movies).Error
	if err != nil {
		return nil, catalogerrors.DatabaseError("top_rated", err)
	}
	return movies, nil
}

// MoviesByDirector returns movies directed by any of directors, skipping
// excludeIDs, most popular first. Ties keep ID order.
func (r *CatalogRepository) MoviesByDirector(ctx context.Context, directors []string, excludeIDs []uint, limit int) ([]database.Movie, error) {
	movies := []database.Movie{}
	if len(directors) == 0 {
		return movies, nil
	}

	query := r.withSequels(r.db.WithContext(ctx)).Where("director IN ?", directors)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := byPopularity(query).Find(&movies).Error; err != nil {
		return nil, catalogerrors.DatabaseError("movies_by_director", err)
	}
	return movies, nil
}

// SequelsByGenre returns sequels whose genre string equals one of genres
func (r *CatalogRepository) SequelsByGenre(ctx context.Context, genres []string) ([]database.Sequel, error) {
	sequels := []database.Sequel{}
	if len(genres) == 0 {
		return sequels, nil
	}
	if err := r.db.WithContext(ctx).Where("genre IN ?", genres).Order("id ASC").Find(&sequels).Error; err != nil {
		return nil, catalogerrors.DatabaseError("sequels_by_genre", err)
	}
	return sequels, nil
}

// SequelsForMovie lists the sequels of the movie with the given title
func (r *CatalogRepository) SequelsForMovie(ctx context.Context, title string) ([]database.Sequel, error) {
	var movie database.Movie
	err := r.db.WithContext(ctx).Select("id").Where("title = ?", title).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogerrors.NotFound(catalogerrors.ErrorTypeMovie, "sequels_for_movie", title)
		}
		return nil, catalogerrors.DatabaseError("sequels_for_movie", err)
	}

	sequels := []database.Sequel{}
	if err := r.db.WithContext(ctx).Where("movie_id = ?", movie.ID).Order("id ASC").Find(&sequels).Error; err != nil {
		return nil, catalogerrors.DatabaseError("sequels_for_movie", err)
	}
	return sequels, nil
}

// SearchMovies matches query case-insensitively against title or description
func (r *CatalogRepository) SearchMovies(ctx context.Context, query string) ([]SearchResult, error) {
	results := []SearchResult{}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	pattern := likePattern(query)
	err := r.db.WithContext(ctx).Model(&database.Movie{}).
		Select("title", "description", "image_url").
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("id ASC").
		Scan(&results).Error
	if err != nil {
		return nil, catalogerrors.DatabaseError("search_movies", err)
	}
	return results, nil
}

// Suggestions returns up to limit titles matching query, followed by up to
// limit titles whose director matches. Each title appears once.
func (r *CatalogRepository) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	suggestions := []string{}
	query = strings.TrimSpace(query)
	if query == "" {
		return suggestions, nil
	}

	pattern := likePattern(query)
	var byTitle, byDirector []string
	db := r.db.WithContext(ctx).Model(&database.Movie{})
	if err := db.Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).Order("id ASC").Limit(limit).Pluck("title", &byTitle).Error; err != nil {
		return nil, catalogerrors.DatabaseError("suggestions", err)
	}
	db = r.db.WithContext(ctx).Model(&database.Movie{})
	if err := db.Where("LOWER(director) LIKE ? ESCAPE '\\'", pattern).Order("id ASC").Limit(limit).Pluck("title", &byDirector).Error; err != nil {
		return nil, catalogerrors.DatabaseError("suggestions", err)
	}

	seen := make(map[string]bool, len(byTitle)+len(byDirector))
	for _, title := range append(byTitle, byDirector...) {
		if !seen[title] {
			seen[title] = true
			suggestions = append(suggestions, title)
		}
	}
	return suggestions, nil
}

// UpsertMovie stores a movie keyed by title. movie.ID is set to the stored
// row's ID. Sequels on the struct are ignored.
func (r *CatalogRepository) UpsertMovie(ctx context.Context, movie *database.Movie) error {
	return upsertMovie(r.db.WithContext(ctx), movie)
}

// UpsertSequel stores a sequel keyed by (movieID, title)
func (r *CatalogRepository) UpsertSequel(ctx context.Context, movieID uint, sequel *database.Sequel) error {
	return upsertSequel(r.db.WithContext(ctx), movieID, sequel)
}

// UpsertMovieWithSequels stores a movie and its sequels as one unit. On
// any failure nothing is written.
func (r *CatalogRepository) UpsertMovieWithSequels(ctx context.Context, movie *database.Movie, sequels []database.Sequel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertMovie(tx, movie); err != nil {
			return err
		}
		for i := range sequels {
			if err := upsertSequel(tx, movie.ID, &sequels[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMovie removes a movie and every row that references it
func (r *CatalogRepository) DeleteMovie(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&database.Sequel{}, &database.RatingReview{}, &database.WatchHistory{}, &database.SearchHistory{},
		} {
			if err := tx.Where("movie_id = ?", id).Delete(dependent).Error; err != nil {
				return catalogerrors.DatabaseError("delete_movie", err)
			}
		}

		result := tx.Delete(&database.Movie{}, id)
		if result.Error != nil {
			return catalogerrors.DatabaseError("delete_movie", result.Error)
		}
		if result.RowsAffected == 0 {
			return catalogerrors.NotFound(catalogerrors.ErrorTypeMovie, "delete_movie", strconv.FormatUint(uint64(id), 10))
		}
		return nil
	})
}

// Ping checks the database connection
func (r *CatalogRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func upsertMovie(tx *gorm.DB, movie *database.Movie) error {
	title := strings.TrimSpace(movie.Title)
	if title == "" {
		return catalogerrors.ValidationError("upsert_movie", catalogerrors.ErrInvalidMovie, "title is required")
	}
	movie.Title = title
	movie.ReleaseDate = dateOnly(movie.ReleaseDate)

	row := *movie
	row.ID = 0
	row.Sequels = nil
	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns(movieUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return catalogerrors.DatabaseError("upsert_movie", err).WithKey(title)
	}

	var stored database.Movie
	if err := tx.Select("id").Where("title = ?", title).First(&stored).Error; err != nil {
		return catalogerrors.DatabaseError("upsert_movie", err).WithKey(title)
	}
	movie.ID = stored.ID
	return nil
}

func upsertSequel(tx *gorm.DB, movieID uint, sequel *database.Sequel) error {
	title := strings.TrimSpace(sequel.Title)
	switch {
	case movieID == 0:
		return catalogerrors.ValidationError("upsert_sequel", catalogerrors.ErrInvalidSequel, "parent movie is required")
	case title == "":
		return catalogerrors.ValidationError("upsert_sequel", catalogerrors.ErrInvalidSequel, "title is required")
	case strings.TrimSpace(sequel.Genre) == "":
		return catalogerrors.ValidationError("upsert_sequel", catalogerrors.ErrInvalidSequel, "genre is required")
	}
	sequel.Title = title
	sequel.MovieID = movieID
	sequel.ReleaseDate = dateOnly(sequel.ReleaseDate)

	row := *sequel
	row.ID = 0
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "title"}},
		DoUpdates: clause.AssignmentColumns(sequelUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return catalogerrors.DatabaseError("upsert_sequel", err).WithKey(title)
	}

	var stored database.Sequel
	if err := tx.Select("id").Where("movie_id = ? AND title = ?", movieID, title).First(&stored).Error; err != nil {
		return catalogerrors.DatabaseError("upsert_sequel", err).WithKey(title)
	}
	sequel.ID = stored.ID
	return nil
}

func (r *CatalogRepository) withSequels(db *gorm.DB) *gorm.DB {
	return db.Preload("Sequels", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequels.id ASC")
	})
}

func byPopularity(db *gorm.DB) *gorm.DB {
	return db.Order("tmdb_popularity IS NULL").Order("tmdb_popularity DESC").Order("id ASC")
}

func paginate(db *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.Limit > 0 {
		db = db.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		db = db.Offset(opts.Offset)
	}
	return db
}

func releaseWindow(months int, now time.Time) (time.Time, time.Time) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return to.AddDate(0, -months, 0), to
}

// dateOnly drops the clock so dates compare by day on every dialect
func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}
