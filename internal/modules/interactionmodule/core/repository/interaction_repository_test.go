package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/database/dbtest"
	interactionerrors "github.com/mantonx/moviecat/internal/modules/interactionmodule/errors"
)

func setup(t *testing.T) (*InteractionRepository, *gorm.DB) {
	db := dbtest.Open(t)
	return NewInteractionRepository(db), db
}

func movie(t *testing.T, db *gorm.DB, title, director, genre string) database.Movie {
	t.Helper()
	m := database.Movie{Title: title, Director: database.StringPtr(director), Genre: database.StringPtr(genre)}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func TestUpsertRatingCreatesThenUpdates(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	m := movie(t, db, "Heat", "Michael Mann", "Crime")

	first := &database.RatingReview{MovieID: m.ID, LoggedID: 7, Rating: 6, Review: database.StringPtr("fine")}
	created, err := repo.UpsertRating(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)
	createdAt := first.CreatedAt

	time.Sleep(5 * time.Millisecond)
	second := &database.RatingReview{MovieID: m.ID, LoggedID: 7, Rating: 9, Review: database.StringPtr("better on rewatch")}
	created, err = repo.UpsertRating(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, second.Rating)
	assert.True(t, createdAt.Equal(second.CreatedAt), "created_at is kept on update")
	assert.True(t, second.UpdatedAt.After(createdAt))

	var count int64
	require.NoError(t, db.Model(&database.RatingReview{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertRatingLosesInsertRace(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	m := movie(t, db, "Ronin", "John Frankenheimer", "Action")

	// Insert the competing row inside the create, after the existence check missed.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:competing_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "rating_reviews" {
			return
		}
		raced = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO rating_reviews (movie_id, logged_id, rating, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			m.ID, 42, 2, now, now)
	}))

	rating := &database.RatingReview{MovieID: m.ID, LoggedID: 42, Rating: 9}
	created, err := repo.UpsertRating(ctx, rating)
	require.NoError(t, err)
	assert.True(t, raced)
	assert.False(t, created, "the competing writer created the row")
	assert.Equal(t, 9, rating.Rating)

	var rows []database.RatingReview
	require.NoError(t, db.Where("movie_id = ?", m.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 9, rows[0].Rating)
}

func TestUpsertRatingMissingMovie(t *testing.T) {
	repo, _ := setup(t)
	_, err := repo.UpsertRating(context.Background(), &database.RatingReview{MovieID: 99, LoggedID: 1, Rating: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interactionerrors.ErrDatabaseOperation), "foreign key violation is a storage error")
}

func TestReviewsOrdering(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	a := movie(t, db, "A", "", "")
	b := movie(t, db, "B", "", "")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []database.RatingReview{
		{MovieID: a.ID, LoggedID: 1, Rating: 5, CreatedAt: base},
		{MovieID: a.ID, LoggedID: 2, Rating: 7, CreatedAt: base.Add(time.Hour)},
		{MovieID: b.ID, LoggedID: 1, Rating: 3, CreatedAt: base.Add(time.Hour)},
	}
	require.NoError(t, db.Create(&rows).Error)

	forA, err := repo.ReviewsForMovie(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, 2, forA[0].LoggedID)

	byUser, err := repo.ReviewsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, b.ID, byUser[0].MovieID)

	all, err := repo.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, rows[2].ID, all[0].ID, "equal timestamps fall back to id descending")
	assert.Equal(t, rows[1].ID, all[1].ID)

	none, err := repo.ReviewsByUser(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRatedMovies(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	a := movie(t, db, "A", "Nolan", "Drama")
	b := movie(t, db, "B", "Mann", "Crime")
	movie(t, db, "C", "Nolan", "Drama")

	require.NoError(t, db.Create(&[]database.RatingReview{
		{MovieID: b.ID, LoggedID: 1, Rating: 4},
		{MovieID: a.ID, LoggedID: 1, Rating: 8},
		{MovieID: a.ID, LoggedID: 2, Rating: 2},
	}).Error)

	rated, err := repo.RatedMovies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rated, 2)
	assert.Equal(t, "A", rated[0].Title)
	assert.Equal(t, "B", rated[1].Title)

	rated, err = repo.RatedMovies(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, rated)
}

func TestWatchHistory(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	a := movie(t, db, "A", "", "")
	b := movie(t, db, "B", "", "")

	for _, entry := range []*database.WatchHistory{
		{MovieID: a.ID, LoggedID: 1},
		{MovieID: b.ID, LoggedID: 1},
		{MovieID: a.ID, LoggedID: 1},
		{MovieID: a.ID, LoggedID: 2},
	} {
		require.NoError(t, repo.AddWatch(ctx, entry))
		assert.False(t, entry.WatchedAt.IsZero())
	}

	mine, err := repo.WatchHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 3, "repeat watches are kept")
	assert.Greater(t, mine[0].ID, mine[1].ID)

	all, err := repo.WatchHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	deleted, err := repo.ClearWatchHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	deleted, err = repo.ClearWatchHistory(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	others, err := repo.WatchHistory(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestSearchHistory(t *testing.T) {
	repo, db := setup(t)
	ctx := context.Background()
	a := movie(t, db, "A", "", "")

	entry := &database.SearchHistory{MovieID: a.ID, LoggedID: 5, MovieName: database.StringPtr("A")}
	require.NoError(t, repo.AddSearch(ctx, entry))
	require.NoError(t, repo.AddSearch(ctx, &database.SearchHistory{MovieID: a.ID, LoggedID: 6}))

	rows, err := repo.SearchHistory(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", *rows[0].MovieName)

	deleted, err := repo.ClearSearchHistory(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	all, err := repo.SearchHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
