package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Server         ServerConfig         `yaml:"server" json:"server"`
	Database       DatabaseConfig       `yaml:"database" json:"database"`
	Logging        LoggingConfig        `yaml:"logging" json:"logging"`
	Catalog        CatalogConfig        `yaml:"catalog" json:"catalog"`
	Recommendation RecommendationConfig `yaml:"recommendation" json:"recommendation"`
	Interaction    InteractionConfig    `yaml:"interaction" json:"interaction"`
	TMDB           TMDBConfig           `yaml:"tmdb" json:"tmdb"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host" env:"MOVIECAT_HOST"`
	Port            int           `yaml:"port" json:"port" env:"MOVIECAT_PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" env:"MOVIECAT_READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" env:"MOVIECAT_WRITE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"MOVIECAT_SHUTDOWN_TIMEOUT" validate:"gte=0"`
	Mode            string        `yaml:"mode" json:"mode" env:"GIN_MODE" validate:"oneof=debug release test"`
	CORSOrigins     []string      `yaml:"cors_origins" json:"cors_origins" env:"MOVIECAT_CORS_ORIGINS"`
}

// DatabaseConfig selects and configures the gorm dialect
type DatabaseConfig struct {
	Type            string        `yaml:"type" json:"type" env:"DATABASE_TYPE" validate:"oneof=sqlite postgres"`
	SQLitePath      string        `yaml:"sqlite_path" json:"sqlite_path" env:"SQLITE_PATH"`
	Host            string        `yaml:"host" json:"host" env:"POSTGRES_HOST"`
	Port            int           `yaml:"port" json:"port" env:"POSTGRES_PORT"`
	Username        string        `yaml:"username" json:"username" env:"POSTGRES_USER"`
	Password        string        `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Name            string        `yaml:"name" json:"name" env:"POSTGRES_DB"`
	SSLMode         string        `yaml:"sslmode" json:"sslmode" env:"POSTGRES_SSLMODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	LogQueries      bool          `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" json:"slow_threshold" env:"DB_SLOW_THRESHOLD"`
}

// LoggingConfig configures the root logger
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// CatalogConfig holds the catalog listing limits
type CatalogConfig struct {
	RecentWindowMonths int `yaml:"recent_window_months" json:"recent_window_months" env:"CATALOG_RECENT_WINDOW_MONTHS" validate:"min=1,max=120"`
	TopRatedLimit      int `yaml:"top_rated_limit" json:"top_rated_limit" env:"CATALOG_TOP_RATED_LIMIT" validate:"min=1,max=1000"`
	SuggestionLimit    int `yaml:"suggestion_limit" json:"suggestion_limit" env:"CATALOG_SUGGESTION_LIMIT" validate:"min=1,max=100"`
}

// RecommendationConfig holds recommendation engine limits
type RecommendationConfig struct {
	DirectorLimit int `yaml:"director_limit" json:"director_limit" env:"RECOMMENDATION_DIRECTOR_LIMIT" validate:"min=1,max=1000"`
}

// InteractionConfig holds rating and history rules
type InteractionConfig struct {
	MaxRating   int `yaml:"max_rating" json:"max_rating" env:"INTERACTION_MAX_RATING" validate:"min=1"`
	RateRetries int `yaml:"rate_retries" json:"rate_retries" env:"INTERACTION_RATE_RETRIES" validate:"min=0,max=10"`
}

// TMDBConfig configures the metadata API client used for catalog ingestion
type TMDBConfig struct {
	APIKey            string        `yaml:"api_key" json:"-" env:"TMDB_API_KEY"`
	BaseURL           string        `yaml:"base_url" json:"base_url" env:"TMDB_BASE_URL" validate:"url"`
	ImageBaseURL      string        `yaml:"image_base_url" json:"image_base_url" env:"TMDB_IMAGE_BASE_URL" validate:"url"`
	Language          string        `yaml:"language" json:"language" env:"TMDB_LANGUAGE"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout" env:"TMDB_REQUEST_TIMEOUT" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" env:"TMDB_REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int           `yaml:"burst" json:"burst" env:"TMDB_BURST" validate:"min=1"`
	Breaker           BreakerConfig `yaml:"breaker" json:"breaker"`
}

// BreakerConfig controls the circuit breaker around TMDB calls
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests" env:"TMDB_BREAKER_MAX_REQUESTS"`
	Interval         time.Duration `yaml:"interval" json:"interval" env:"TMDB_BREAKER_INTERVAL"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" env:"TMDB_BREAKER_TIMEOUT"`
	FailureThreshold uint32        `yaml:"failure_threshold" json:"failure_threshold" env:"TMDB_BREAKER_FAILURE_THRESHOLD" validate:"min=1"`
}

// Watcher is called when configuration changes
type Watcher func(oldConfig, newConfig *Config)

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			Mode:            "release",
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			SQLitePath:      "./data/moviecat.db",
			Host:            "localhost",
			Port:            5432,
			Username:        "moviecat",
			Name:            "moviecat",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			SlowThreshold:   200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Catalog: CatalogConfig{
			RecentWindowMonths: 3,
			TopRatedLimit:      32,
			SuggestionLimit:    4,
		},
		Recommendation: RecommendationConfig{
			DirectorLimit: 10,
		},
		Interaction: InteractionConfig{
			MaxRating:   10,
			RateRetries: 2,
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3/",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
			Language:          "en-US",
			RequestTimeout:    15 * time.Second,
			RequestsPerSecond: 4,
			Burst:             1,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
	}
}

// Manager loads configuration and notifies watchers on reload
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	watchers   []Watcher
	validate   *validator.Validate
}

// NewManager creates a manager holding the default configuration
func NewManager() *Manager {
	return &Manager{
		config:   DefaultConfig(),
		validate: newValidator(),
	}
}

// newValidator reports fields by their yaml key so errors match the file
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Load reads defaults, then the file (if any), then environment overrides,
// and validates the result. The previous configuration is kept on failure.
func (m *Manager) Load(configPath string) error {
	m.mu.Lock()
	oldConfig := m.config
	m.configPath = configPath

	newConfig, err := m.build(configPath)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.config = newConfig
	watchers := append([]Watcher(nil), m.watchers...)
	m.mu.Unlock()

	for _, w := range watchers {
		w(oldConfig, newConfig)
	}
	return nil
}

func (m *Manager) build(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := m.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDerived(cfg)
	return cfg, nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// Path returns the file the configuration was last loaded from
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// AddWatcher registers a callback for configuration reloads
func (m *Manager) AddWatcher(w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, w)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file format: %s", filepath.Ext(path))
	}
}

func applyDerived(cfg *Config) {
	if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = filepath.Join(".", "data", "moviecat.db")
	}
	if !strings.HasSuffix(cfg.TMDB.BaseURL, "/") {
		cfg.TMDB.BaseURL += "/"
	}
}
