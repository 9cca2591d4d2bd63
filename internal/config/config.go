// Package config resolves flicklog settings from defaults, config file,
// .env and environment into a single value passed to constructors.
package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

const (
	DefaultDatasetPath = "movie_dataset.csv"
	DefaultCastLimit   = 10
	MaxCastLimit       = 15
	DefaultCacheDBFile = "./cache.db"
	DefaultCacheTTL    = 720 * time.Hour
	DefaultOMDBTimeout = 5 * time.Second
)

// Config holds every setting the application needs.
type Config struct {
	TMDBAPIKey  string
	TMDBBaseURL string
	OMDBAPIKey  string
	OMDBBaseURL string

	OMDBTimeout time.Duration

	DatasetPath string
	CastLimit   int

	CacheEnabled bool
	CacheDBFile  string
	CacheTTL     time.Duration

	SQLitePath     string
	PostgresDSN    string
	DatasetteURL   string
	DatasetteToken string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.base_url", "")
	v.SetDefault("omdb.timeout", DefaultOMDBTimeout.String())

	v.SetDefault("dataset.path", DefaultDatasetPath)
	v.SetDefault("dataset.cast_limit", DefaultCastLimit)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dbfile", DefaultCacheDBFile)
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())

	v.SetDefault("export.sqlite", "./flicklog.db")
	v.SetDefault("export.postgres_dsn", "")
	v.SetDefault("datasette.url", "")
	v.SetDefault("datasette.token", "")
}

// LoadEnvFiles loads .env files into the process environment without
// overriding variables that are already set.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// BindEnv maps the conventional environment variable names onto config keys.
func BindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"tmdb.api_key":        "TMDB_API_KEY",
		"omdb.api_key":        "OMDB_API_KEY",
		"export.postgres_dsn": "DATABASE_URL",
		"datasette.token":     "DATASETTE_TOKEN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return eris.Wrapf(err, "bind %s", env)
		}
	}
	return nil
}

// ReadFile reads the config file at path, or config.yaml from the working
// directory when path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return eris.Wrap(err, "read config file")
	}
	slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	return nil
}

// Load resolves v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		TMDBAPIKey:     v.GetString("tmdb.api_key"),
		TMDBBaseURL:    v.GetString("tmdb.base_url"),
		OMDBAPIKey:     v.GetString("omdb.api_key"),
		OMDBBaseURL:    v.GetString("omdb.base_url"),
		DatasetPath:    v.GetString("dataset.path"),
		CastLimit:      v.GetInt("dataset.cast_limit"),
		CacheEnabled:   v.GetBool("cache.enabled"),
		CacheDBFile:    v.GetString("cache.dbfile"),
		SQLitePath:     v.GetString("export.sqlite"),
		PostgresDSN:    v.GetString("export.postgres_dsn"),
		DatasetteURL:   v.GetString("datasette.url"),
		DatasetteToken: v.GetString("datasette.token"),
	}

	var err error
	if cfg.OMDBTimeout, err = parseDuration(v, "omdb.timeout", DefaultOMDBTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration(v, "cache.ttl", DefaultCacheTTL); err != nil {
		return nil, err
	}

	if cfg.DatasetPath == "" {
		cfg.DatasetPath = DefaultDatasetPath
	}
	if cfg.CastLimit <= 0 || cfg.CastLimit > MaxCastLimit {
		return nil, eris.Errorf("dataset.cast_limit must be between 1 and %d, got %d", MaxCastLimit, cfg.CastLimit)
	}
	if cfg.CacheDBFile == "" {
		cfg.CacheDBFile = DefaultCacheDBFile
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid duration for %s", key)
	}
	return d, nil
}
