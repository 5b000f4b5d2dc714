package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/database/dbtest"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	catalogerrors "github.com/mantonx/moviecat/internal/modules/catalogmodule/errors"
)

func newService(t *testing.T) (*CatalogService, *repository.CatalogRepository) {
	repo := repository.NewCatalogRepository(dbtest.Open(t))
	svc := NewCatalogService(repo, LimitsFromConfig(config.DefaultConfig().Catalog), nil)
	return svc, repo
}

func released(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRecentlyReleasedUsesClock(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	movie := &database.Movie{Title: "Dune: Part Two", ReleaseDate: released(2024, 3, 1)}
	require.NoError(t, repo.UpsertMovieWithSequels(ctx, movie, []database.Sequel{
		{Title: "Dune Messiah", Genre: "Science Fiction", ReleaseDate: released(2024, 5, 20)},
	}))
	require.NoError(t, repo.UpsertMovie(ctx, &database.Movie{Title: "Dune", ReleaseDate: released(2021, 10, 22)}))

	svc.SetClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	recent, err := svc.RecentlyReleased(ctx)
	require.NoError(t, err)
	require.Len(t, recent.Movies, 1)
	assert.Equal(t, "Dune: Part Two", recent.Movies[0].Title)
	require.Len(t, recent.Sequels, 1)
	assert.Equal(t, "Dune Messiah", recent.Sequels[0].Title)

	svc.SetClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	recent, err = svc.RecentlyReleased(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent.Movies)
	assert.Empty(t, recent.Sequels)
}

func TestSetLimitsAppliesToListings(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	for i, title := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, repo.UpsertMovie(ctx, &database.Movie{Title: title, TMDBPopularity: database.Float64Ptr(float64(i))}))
	}

	popular, err := svc.MostPopular(ctx)
	require.NoError(t, err)
	assert.Len(t, popular, 5)
	assert.Equal(t, "E", popular[0].Title)

	svc.SetLimits(Limits{RecentWindowMonths: 3, TopRatedLimit: 1, SuggestionLimit: 1})
	assert.Equal(t, 1, svc.Limits().TopRatedLimit)

	popular, err = svc.MostPopular(ctx)
	require.NoError(t, err)
	assert.Len(t, popular, 1)
}

func TestMovieName(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	movie := &database.Movie{Title: "Arrival"}
	require.NoError(t, repo.UpsertMovie(ctx, movie))

	name, err := svc.MovieName(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, &MovieName{ID: movie.ID, Name: "Arrival"}, name)

	_, err = svc.MovieName(ctx, movie.ID+1)
	assert.True(t, errors.Is(err, catalogerrors.ErrMovieNotFound))
}

func TestMovieDetailsAndSequels(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertMovieWithSequels(ctx, &database.Movie{Title: "Shrek"}, []database.Sequel{
		{Title: "Shrek 2", Genre: "Animation"},
		{Title: "Shrek the Third", Genre: "Animation"},
	}))

	movie, err := svc.MovieDetails(ctx, "Shrek")
	require.NoError(t, err)
	assert.Len(t, movie.Sequels, 2)

	sequels, err := svc.SequelsForMovie(ctx, "Shrek")
	require.NoError(t, err)
	assert.Equal(t, "Shrek 2", sequels[0].Title)
	assert.Equal(t, svc.Repository(), repo)
}
