package recommendationmodule

import (
	"context"

	"github.com/mantonx/moviecat/internal/database"
	catalogrepo "github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	interactionrepo "github.com/mantonx/moviecat/internal/modules/interactionmodule/core/repository"
)

// repositoryStore reads ratings from the interaction log and candidates
// from the catalog
type repositoryStore struct {
	catalog      *catalogrepo.CatalogRepository
	interactions *interactionrepo.InteractionRepository
}

func (s *repositoryStore) RatedMovies(ctx context.Context, loggedID int) ([]database.Movie, error) {
	return s.interactions.RatedMovies(ctx, loggedID)
}

func (s *repositoryStore) MoviesByDirector(ctx context.Context, directors []string, excludeIDs []uint, limit int) ([]database.Movie, error) {
	return s.catalog.MoviesByDirector(ctx, directors, excludeIDs, limit)
}

func (s *repositoryStore) SequelsByGenre(ctx context.Context, genres []string) ([]database.Sequel, error) {
	return s.catalog.SequelsByGenre(ctx, genres)
}
