package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_PathStaysInSandbox(t *testing.T) {
	env := NewTestEnv(t)

	p := env.Path("exports", "movies.csv")
	assert.True(t, filepath.IsAbs(p))
	assert.Equal(t, filepath.Join(env.Path(), "exports", "movies.csv"), p)
	assert.Equal(t, env.Path(), env.Path("exports", ".."))
}

func TestTestEnv_WriteCSV(t *testing.T) {
	env := NewTestEnv(t)

	p := env.WriteCSV("in/list.csv", "Name,Year", "The Matrix,1999", `"Crouching Tiger, Hidden Dragon",2000`)
	assert.Equal(t, env.Path("in", "list.csv"), p)
	assert.Equal(t, "Name,Year\nThe Matrix,1999\n\"Crouching Tiger, Hidden Dragon\",2000\n", env.ReadFileString("in/list.csv"))
}

func TestTestEnv_FileHelpers(t *testing.T) {
	env := NewTestEnv(t)

	assert.False(t, env.FileExists("movie_dataset.csv"))
	env.WriteFileString("movie_dataset.csv", "movie_id,title\n603,The Matrix\n")
	assert.True(t, env.FileExists("movie_dataset.csv"))
	env.RequireFileExists("movie_dataset.csv")
	env.AssertFileContains("movie_dataset.csv", "603,The Matrix")
}

func TestTestEnv_Chdir(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("work/config.yaml", "dataset:\n  path: x.csv\n")

	env.Chdir("work")
	wd, err := os.Getwd()
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(env.Path("work"))
	require.NoError(t, err)
	wdResolved, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, resolved, wdResolved)
	assert.FileExists(t, "config.yaml")
}

func TestTestEnv_SetEnvRestores(t *testing.T) {
	t.Setenv("FLICKLOG_TEST_VAR", "original")

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.SetEnv("FLICKLOG_TEST_VAR", "modified")
		assert.Equal(t, "modified", os.Getenv("FLICKLOG_TEST_VAR"))
	})

	assert.Equal(t, "original", os.Getenv("FLICKLOG_TEST_VAR"))
}
