// Package cmd wires the flicklog command line.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/flicklog/internal/config"
)

// CLI represents the complete command structure for the flicklog application
type CLI struct {
	// Global flags
	Config  string `help:"Path to config file (default ./config.yaml)" type:"path"`
	Dataset string `help:"Path to the dataset CSV file (default movie_dataset.csv)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	// Cache flags
	CacheDB  string `name:"cache-db" help:"Path to cache SQLite database file"`
	CacheTTL string `name:"cache-ttl" help:"Cache time-to-live duration (e.g., 720h for 30 days)"`
	NoCache  bool   `help:"Disable the API response cache"`

	Menu          MenuCmd          `cmd:"" default:"1" help:"Interactive menu (default)"`
	Search        SearchCmd        `cmd:"" help:"Search TMDB for a movie and add it to the dataset"`
	Import        ImportCmd        `cmd:"" help:"Bulk import titles from a CSV or XLSX watch list"`
	UpdateRatings UpdateRatingsCmd `cmd:"" name:"update-ratings" help:"Look up ratings for movies missing them"`
	Stats         StatsCmd         `cmd:"" help:"Show dataset statistics"`
	Heatmap       HeatmapCmd       `cmd:"" help:"Show how often genres appear together"`
	Export        ExportCmd        `cmd:"" help:"Export derived tables to files and databases"`
	Cache         CacheCmd         `cmd:"" help:"Manage the API response cache"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("flicklog"),
		kong.Description("Collect movie metadata and ratings into a dataset and report on it."),
		kong.UsageOnError(),
	)

	initLogging(os.Stdout, cli.Verbose)

	cfg, err := loadConfig(&cli)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := NewApp(cfg, os.Stdin, os.Stdout)
	if err != nil {
		slog.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx.BindTo(runCtx, (*context.Context)(nil))
	err = ctx.Run(app)
	stop()
	if closeErr := app.Close(); closeErr != nil {
		slog.Warn("Failed to close cache", "error", closeErr)
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves defaults, .env, environment, the config file and the
// global flags, in increasing precedence.
func loadConfig(cli *CLI) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	config.LoadEnvFiles()
	if err := config.BindEnv(v); err != nil {
		return nil, err
	}
	if err := config.ReadFile(v, cli.Config); err != nil {
		return nil, err
	}
	applyFlags(v, cli)
	return config.Load(v)
}

func applyFlags(v *viper.Viper, cli *CLI) {
	if cli.Dataset != "" {
		v.Set("dataset.path", cli.Dataset)
	}
	if cli.CacheDB != "" {
		v.Set("cache.dbfile", cli.CacheDB)
	}
	if cli.CacheTTL != "" {
		v.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		v.Set("cache.enabled", false)
	}
}

func initLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
