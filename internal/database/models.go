package database

import (
	"strings"
	"time"
)

// Movie is a catalog title. Title is the natural key used when the
// catalog is refreshed from the metadata provider.
type Movie struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:255;not null;uniqueIndex" json:"title"`
	ReleaseDate    *time.Time `gorm:"type:date;index" json:"release_date"`
	Director       *string    `gorm:"size:255;index" json:"director"`
	Genre          *string    `gorm:"size:255" json:"genre"` // comma-joined genre names
	Description    *string    `gorm:"type:text" json:"description"`
	ImageURL       *string    `gorm:"size:512" json:"image_url"`
	TMDBPopularity *float64   `gorm:"column:tmdb_popularity;index" json:"tmdb_popularity"`
	UserPopularity *float64   `json:"user_popularity"`
	Sequels        []Sequel   `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"sequels"`
}

func (Movie) TableName() string {
	return "movies"
}

// Sequel is a follow-up title attached to exactly one parent movie.
type Sequel struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	MovieID        uint       `gorm:"not null;uniqueIndex:idx_sequel_movie_title" json:"movie"`
	Title          string     `gorm:"size:255;not null;uniqueIndex:idx_sequel_movie_title" json:"title"`
	Genre          string     `gorm:"size:255;not null;index" json:"genre"`
	ReleaseDate    *time.Time `gorm:"type:date;index" json:"release_date"`
	Director       *string    `gorm:"size:255" json:"director"`
	TMDBPopularity *float64   `gorm:"column:tmdb_popularity" json:"tmdb_popularity"`
	UserPopularity *float64   `json:"user_popularity"`
	Description    *string    `gorm:"type:text" json:"description"`
	ImageURL       *string    `gorm:"size:512" json:"image_url"`
}

func (Sequel) TableName() string {
	return "sequels"
}

// RatingReview is one user's score for one movie. At most one row exists
// per (movie, user).
type RatingReview struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MovieID    uint      `gorm:"not null;uniqueIndex:idx_rating_movie_user" json:"movie"`
	LoggedID   int       `gorm:"not null;uniqueIndex:idx_rating_movie_user;index" json:"logged_id"`
	LoggedName *string   `gorm:"type:text" json:"logged_name"`
	Rating     int       `gorm:"not null" json:"rating"`
	Review     *string   `gorm:"type:text" json:"review"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RatingReview) TableName() string {
	return "rating_reviews"
}

// WatchHistory records that a user watched a movie. Rows are append-only.
type WatchHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoggedID   int       `gorm:"not null;index" json:"logged_id"`
	LoggedName *string   `gorm:"type:text" json:"logged_name"`
	MovieID    uint      `gorm:"not null;index" json:"movie"`
	WatchedAt  time.Time `gorm:"autoCreateTime" json:"watched_at"`

	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WatchHistory) TableName() string {
	return "watch_histories"
}

// SearchHistory records that a user opened a movie from search.
type SearchHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoggedID   int       `gorm:"not null;index" json:"logged_id"`
	LoggedName *string   `gorm:"type:text" json:"logged_name"`
	MovieID    uint      `gorm:"not null;index" json:"movie"`
	MovieName  *string   `gorm:"type:text" json:"movie_name"`
	WatchedAt  time.Time `gorm:"autoCreateTime" json:"watched_at"`

	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SearchHistory) TableName() string {
	return "search_histories"
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Movie{},
		&Sequel{},
		&RatingReview{},
		&WatchHistory{},
		&SearchHistory{},
	}
}

// UnknownAttribute is stored when the metadata provider has no director or
// genre for a title. It never counts as a match between titles.
const UnknownAttribute = "Unknown"

// StringPtr returns nil for blank strings so optional columns stay NULL.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
