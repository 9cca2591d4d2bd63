package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/flicklog/internal/config"
	"github.com/lepinkainen/flicklog/internal/testutil"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("flicklog"),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	return cli, ctx, err
}

func TestDefaultCommandIsMenu(t *testing.T) {
	_, ctx, err := parseCLI(t)
	require.NoError(t, err)
	assert.Equal(t, "menu", ctx.Command())
}

func TestGlobalFlagsParsing(t *testing.T) {
	cli, ctx, err := parseCLI(t,
		"--dataset", "/data/movies.csv",
		"--cache-db", "/tmp/cache.db",
		"--cache-ttl", "24h",
		"--no-cache",
		"-v",
		"stats", "--format", "yaml", "--top", "3")
	require.NoError(t, err)

	assert.Equal(t, "stats", ctx.Command())
	assert.Equal(t, "/data/movies.csv", cli.Dataset)
	assert.Equal(t, "/tmp/cache.db", cli.CacheDB)
	assert.Equal(t, "24h", cli.CacheTTL)
	assert.True(t, cli.NoCache)
	assert.True(t, cli.Verbose)
	assert.Equal(t, "yaml", cli.Stats.Format)
	assert.Equal(t, 3, cli.Stats.Top)
}

func TestCommandParsing(t *testing.T) {
	cli, ctx, err := parseCLI(t, "search", "The Matrix", "--year", "1999", "--pick", "2", "--save")
	require.NoError(t, err)
	assert.Equal(t, "search <title>", ctx.Command())
	assert.Equal(t, SearchCmd{Title: "The Matrix", Year: 1999, Pick: 2, Save: true}, cli.Search)

	cli, _, err = parseCLI(t, "import", "-f", "watched.csv", "--interactive", "--no-save")
	require.NoError(t, err)
	assert.True(t, cli.Import.Interactive)
	assert.True(t, cli.Import.NoSave)
	assert.Contains(t, cli.Import.File, "watched.csv")

	cli, _, err = parseCLI(t, "export", "--split", "--sqlite", "--postgres", "--datasette")
	require.NoError(t, err)
	assert.True(t, cli.Export.Split)
	assert.True(t, cli.Export.SQLite)
	assert.True(t, cli.Export.Postgres)
	assert.True(t, cli.Export.Datasette)

	_, ctx, err = parseCLI(t, "update-ratings")
	require.NoError(t, err)
	assert.Equal(t, "update-ratings", ctx.Command())

	cli, ctx, err = parseCLI(t, "cache", "invalidate", "omdb")
	require.NoError(t, err)
	assert.Equal(t, "cache invalidate <source>", ctx.Command())
	assert.Equal(t, "omdb", cli.Cache.Invalidate.Source)
}

func TestCommandParsing_Rejects(t *testing.T) {
	_, _, err := parseCLI(t, "stats", "--format", "xml")
	assert.Error(t, err)

	_, _, err = parseCLI(t, "cache", "invalidate", "imdb")
	assert.Error(t, err)

	_, _, err = parseCLI(t, "import")
	assert.Error(t, err)
}

func TestSearchDefaults(t *testing.T) {
	cli, _, err := parseCLI(t, "search", "Alien")
	require.NoError(t, err)
	assert.Equal(t, 1, cli.Search.Pick)
	assert.Equal(t, 0, cli.Search.Year)
	assert.False(t, cli.Search.Save)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Chdir(".")
	env.WriteFileString("config.yaml", `
dataset:
  path: from-file.csv
  cast_limit: 15
cache:
  dbfile: file-cache.db
  ttl: 48h
`)

	cfg, err := loadConfig(&CLI{})
	require.NoError(t, err)
	assert.Equal(t, "from-file.csv", cfg.DatasetPath)
	assert.Equal(t, 15, cfg.CastLimit)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.CacheEnabled)

	cfg, err = loadConfig(&CLI{Dataset: "flag.csv", CacheDB: "flag-cache.db", CacheTTL: "1h", NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, "flag.csv", cfg.DatasetPath)
	assert.Equal(t, "flag-cache.db", cfg.CacheDBFile)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.CacheEnabled)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Chdir(".")
	env.WriteFileString("custom.yaml", "omdb:\n  timeout: 2s\n")

	cfg, err := loadConfig(&CLI{Config: env.Path("custom.yaml")})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.OMDBTimeout)
	assert.Equal(t, config.DefaultDatasetPath, cfg.DatasetPath)

	_, err = loadConfig(&CLI{Config: env.Path("missing.yaml")})
	assert.Error(t, err)

	_, err = loadConfig(&CLI{CacheTTL: "soon"})
	assert.Error(t, err)
}

func TestNewApp_InvalidDataset(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("broken.csv", "title,genres\nNo Id,[]\n")

	_, err := NewApp(&config.Config{DatasetPath: env.Path("broken.csv"), CastLimit: 10}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewApp_CacheFailureDisablesCache(t *testing.T) {
	env := testutil.NewTestEnv(t)
	cfg := &config.Config{
		DatasetPath:  env.Path("movies.csv"),
		CastLimit:    10,
		CacheEnabled: true,
		CacheDBFile:  env.Path("missing-dir", "cache.db"),
	}

	app, err := NewApp(cfg, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()
	assert.Nil(t, app.cache)
}

func TestRunBindsContextAndApp(t *testing.T) {
	app := newTestApp(t, "")

	_, ctx, err := parseCLI(t, "stats")
	require.NoError(t, err)
	ctx.BindTo(context.Background(), (*context.Context)(nil))
	require.NoError(t, ctx.Run(app.App))
	assert.Contains(t, app.output.String(), "Dataset is empty")
}

func TestInitLogging(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	var buf bytes.Buffer
	initLogging(&buf, false)
	slog.Debug("hidden")
	slog.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	initLogging(&buf, true)
	slog.Debug("visible now")
	assert.Contains(t, buf.String(), "visible now")
}
