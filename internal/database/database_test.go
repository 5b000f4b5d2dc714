package database

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mantonx/moviecat/internal/config"
)

func openTemp(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	cfg := config.DefaultConfig().Database
	cfg.SQLitePath = filepath.Join(t.TempDir(), "db", "moviecat.db")
	return &cfg
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := openTemp(t)
	db, err := Open(*cfg, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"movies", "sequels", "rating_reviews", "watch_histories", "search_histories"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&RatingReview{}, "idx_rating_movie_user"))
	assert.True(t, db.Migrator().HasIndex(&Sequel{}, "idx_sequel_movie_title"))
}

func TestMovieDeleteCascades(t *testing.T) {
	cfg := openTemp(t)
	db, err := Open(*cfg, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	movie := Movie{Title: "Alien", Sequels: []Sequel{{Title: "Aliens", Genre: "Horror"}}}
	require.NoError(t, db.Create(&movie).Error)
	require.NoError(t, db.Create(&RatingReview{MovieID: movie.ID, LoggedID: 1, Rating: 9}).Error)
	require.NoError(t, db.Create(&WatchHistory{MovieID: movie.ID, LoggedID: 1}).Error)
	require.NoError(t, db.Create(&SearchHistory{MovieID: movie.ID, LoggedID: 1}).Error)

	require.NoError(t, db.Delete(&Movie{}, movie.ID).Error)

	for _, model := range []interface{}{&Sequel{}, &RatingReview{}, &WatchHistory{}, &SearchHistory{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows should be removed with their movie", model)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: "oracle"}, hclog.NewNullLogger())
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{
		Host: "db", Port: 5433, Username: "u", Password: "p", Name: "movies",
	})
	assert.Equal(t, "host=db user=u password=p dbname=movies port=5433 sslmode=disable TimeZone=UTC", dsn)
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr("  "))
	require.NotNil(t, StringPtr("Drama"))
	assert.Equal(t, "Drama", *StringPtr("Drama"))
	assert.Equal(t, "", Deref(nil))
}

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})
	l := NewGormLogger(log, false, 10*time.Millisecond)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Empty(t, buf.String(), "fast queries are not logged unless enabled")

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "query failed")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())

	buf.Reset()
	NewGormLogger(log, true, 0).Trace(context.Background(), time.Now(), sql, nil)
	assert.Contains(t, buf.String(), "SELECT 1")
}
