// Package testutil holds shared fixtures for flicklog tests: a temp-dir
// sandbox for dataset and import files, and fake TMDB/OMDb servers.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnv is a per-test working directory. Every path handed out is
// checked to stay inside it.
type TestEnv struct {
	t    *testing.T
	root string
}

// NewTestEnv creates an environment rooted at t.TempDir().
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, root: t.TempDir()}
}

// Path joins elem onto the sandbox root and fails the test if the result
// points outside it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()
	p := filepath.Join(append([]string{e.root}, elem...)...)
	rel, err := filepath.Rel(e.root, p)
	require.NoError(e.t, err)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", p, e.root)
	}
	return p
}

// WriteFileString writes content to name, creating parent directories.
func (e *TestEnv) WriteFileString(name, content string) {
	e.t.Helper()
	p := e.Path(name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0o644))
}

// WriteCSV writes a header line followed by rows, one comma-joined line each.
// Cells are written as-is, so callers quote anything containing commas.
func (e *TestEnv) WriteCSV(name string, header string, rows ...string) string {
	e.t.Helper()
	e.WriteFileString(name, strings.Join(append([]string{header}, rows...), "\n")+"\n")
	return e.Path(name)
}

// ReadFileString returns the contents of name.
func (e *TestEnv) ReadFileString(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(e.Path(name))
	require.NoError(e.t, err)
	return string(data)
}

// FileExists reports whether name exists in the sandbox.
func (e *TestEnv) FileExists(name string) bool {
	e.t.Helper()
	_, err := os.Stat(e.Path(name))
	return err == nil
}

func (e *TestEnv) RequireFileExists(name string) {
	e.t.Helper()
	require.FileExists(e.t, e.Path(name))
}

func (e *TestEnv) AssertFileContains(name, want string) {
	e.t.Helper()
	assert.Contains(e.t, e.ReadFileString(name), want, "file %s", name)
}

// Chdir switches the process into the sandbox subdirectory dir until the
// test ends. Config discovery reads config.yaml and .env from the working
// directory.
func (e *TestEnv) Chdir(dir string) {
	e.t.Helper()
	e.t.Chdir(e.Path(dir))
}

// SetEnv sets key for the duration of the test.
func (e *TestEnv) SetEnv(key, value string) {
	e.t.Helper()
	e.t.Setenv(key, value)
}
