package ingestmodule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/metrics"
	"github.com/mantonx/moviecat/internal/tmdb"
	"github.com/mantonx/moviecat/internal/types"
)

const (
	unknown    = database.UnknownAttribute
	dateLayout = "2006-01-02"
)

// Provider is the metadata source the importer reads from
type Provider interface {
	Genres(ctx context.Context) (map[int]string, error)
	Discover(ctx context.Context, page int) (*tmdb.DiscoverPage, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	Collection(ctx context.Context, id int) (*tmdb.Collection, error)
}

// Catalog stores imported movies
type Catalog interface {
	UpsertMovieWithSequels(ctx context.Context, movie *database.Movie, sequels []database.Sequel) error
}

// Options controls an import run
type Options struct {
	// MaxPages stops after this many discover pages. Zero means every page.
	MaxPages int
}

// Report summarizes an import run
type Report struct {
	Pages    int           `json:"pages"`
	Movies   int           `json:"movies"`
	Sequels  int           `json:"sequels"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Importer copies popular movies and their collections into the catalog
type Importer struct {
	provider     Provider
	catalog      Catalog
	imageBaseURL string
	log          hclog.Logger
}

// NewImporter creates an importer. Poster paths are prefixed with
// imageBaseURL.
func NewImporter(provider Provider, catalog Catalog, imageBaseURL string, log hclog.Logger) *Importer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Importer{provider: provider, catalog: catalog, imageBaseURL: imageBaseURL, log: log}
}

// Run pages through the discover listing and upserts every movie with a
// poster. Failures of single movies are logged and counted. Failing to list
// genres or a page, or cancellation of ctx, ends the run with an error and
// the report so far.
func (imp *Importer) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() { report.Duration = time.Since(start) }()

	genres, err := imp.provider.Genres(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch genres: %w", err)
	}

	for page, totalPages := 1, 1; page <= totalPages; page++ {
		if opts.MaxPages > 0 && page > opts.MaxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := imp.provider.Discover(ctx, page)
		if err != nil {
			return report, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		if len(result.Results) == 0 {
			break
		}
		totalPages = result.TotalPages
		report.Pages++

		for _, summary := range result.Results {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			imp.importMovie(ctx, summary, genres, report)
		}
		imp.log.Info("page imported", "page", page, "total_pages", totalPages,
			"movies", report.Movies, "skipped", report.Skipped, "failed", report.Failed)
	}

	imp.log.Info("import finished", "pages", report.Pages, "movies", report.Movies,
		"sequels", report.Sequels, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (imp *Importer) importMovie(ctx context.Context, summary tmdb.DiscoverMovie, genres map[int]string, report *Report) {
	log := imp.log.With("tmdb_id", summary.ID, "title", summary.Title)

	if summary.PosterPath == "" {
		report.Skipped++
		metrics.IngestMovies.WithLabelValues("skipped").Inc()
		log.Debug("skipping movie without poster")
		return
	}

	movie, sequels, err := imp.buildMovie(ctx, summary, genres, log)
	if err == nil {
		err = imp.catalog.UpsertMovieWithSequels(ctx, movie, sequels)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		report.Failed++
		metrics.IngestMovies.WithLabelValues("failed").Inc()
		log.Warn("failed to import movie", "error", err)
		return
	}

	report.Movies++
	report.Sequels += len(sequels)
	metrics.IngestMovies.WithLabelValues("imported").Inc()
	log.Debug("movie imported", "id", movie.ID, "sequels", len(sequels))
}

func (imp *Importer) buildMovie(ctx context.Context, summary tmdb.DiscoverMovie, genres map[int]string, log hclog.Logger) (*database.Movie, []database.Sequel, error) {
	released, err := parseDate(summary.ReleaseDate)
	if err != nil {
		return nil, nil, err
	}

	details, err := imp.provider.MovieDetails(ctx, summary.ID)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(summary.GenreIDs))
	for _, id := range summary.GenreIDs {
		name, ok := genres[id]
		if !ok {
			name = unknown
		}
		names = append(names, name)
	}

	movie := &database.Movie{
		Title:          summary.Title,
		ReleaseDate:    released,
		Director:       database.StringPtr(details.Director()),
		Genre:          database.StringPtr(strings.Join(names, ", ")),
		Description:    database.StringPtr(summary.Overview),
		ImageURL:       database.StringPtr(imp.imageBaseURL + summary.PosterPath),
		TMDBPopularity: database.Float64Ptr(summary.Popularity),
	}

	if details.BelongsToCollection == nil {
		return movie, nil, nil
	}
	sequels, err := imp.buildSequels(ctx, summary.ID, details.BelongsToCollection.ID, log)
	if err != nil {
		return nil, nil, err
	}
	return movie, sequels, nil
}

// buildSequels turns the other parts of a collection into sequels. Parts
// without a poster or with an unreadable date are left out.
func (imp *Importer) buildSequels(ctx context.Context, movieID, collectionID int, log hclog.Logger) ([]database.Sequel, error) {
	collection, err := imp.provider.Collection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection %d: %w", collectionID, err)
	}

	sequels := make([]database.Sequel, 0, len(collection.Parts))
	for _, part := range collection.Parts {
		if part.ID == movieID || part.PosterPath == "" {
			continue
		}

		details, err := imp.provider.MovieDetails(ctx, part.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch collection part %d: %w", part.ID, err)
		}
		if details.PosterPath == "" {
			continue
		}
		released, err := parseDate(details.ReleaseDate)
		if err != nil {
			log.Warn("skipping collection part", "part", part.ID, "error", err)
			continue
		}

		genre := strings.Join(details.GenreNames(), ", ")
		if genre == "" {
			genre = unknown
		}
		sequels = append(sequels, database.Sequel{
			Title:          details.Title,
			Genre:          genre,
			ReleaseDate:    released,
			Director:       database.StringPtr(details.Director()),
			TMDBPopularity: database.Float64Ptr(details.Popularity),
			Description:    database.StringPtr(details.Overview),
			ImageURL:       database.StringPtr(imp.imageBaseURL + details.PosterPath),
		})
	}
	return sequels, nil
}

func parseDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, types.NewValidationError("invalid release date", value)
	}
	return &t, nil
}
