package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const fixture = `
statutes:
  - id: s1
    title: Speed Limits
    effect: {kind: prohibition, description: Driving above the posted speed limit}
    jurisdiction: US-CA
    tags: [traffic]
    status: active
  - id: s2
    title: Parking Rules
    effect: {kind: prohibition, description: Parking in a red zone}
    jurisdiction: US-CA
    tags: [traffic, municipal]
    status: active
  - id: s3
    title: Noise Control
    effect: {kind: prohibition, description: Amplified noise after ten at night}
    jurisdiction: US-NY
    tags: [municipal]
    status: draft
`

// run executes the CLI against args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"statreg", "--log-level", "error"}, args...))
	return out.String(), err
}

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statutes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func loadedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "db")
	out, err := run(t, "load", "--db", db, "--file", writeFixture(t, fixture))
	require.NoError(t, err)
	require.Contains(t, out, "Loaded 3 of 3 statutes")
	return db
}

func TestLoadAndQuery(t *testing.T) {
	db := loadedDB(t)

	t.Run("get", func(t *testing.T) {
		out, err := run(t, "get", "--db", db, "--id", "s1")
		require.NoError(t, err)
		assert.Contains(t, out, "Speed Limits")
		assert.Contains(t, out, "Status:        active")
		assert.Contains(t, out, "Version:       1")
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := run(t, "get", "--db", db, "--id", "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("list pages", func(t *testing.T) {
		out, err := run(t, "list", "--db", db, "--offset", "1", "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "s2")
		assert.NotContains(t, out, "Speed Limits")
		assert.Contains(t, out, "(1 of 3)")
	})

	t.Run("search intersects filters", func(t *testing.T) {
		out, err := run(t, "search", "--db", db, "--tag", "municipal", "--jurisdiction", "US-CA")
		require.NoError(t, err)
		assert.Contains(t, out, "Parking Rules")
		assert.NotContains(t, out, "Noise Control")
		assert.Contains(t, out, "(1 of 1)")
	})

	t.Run("search rejects unknown status", func(t *testing.T) {
		_, err := run(t, "search", "--db", db, "--status", "pending")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pending")
	})

	t.Run("fuzzy", func(t *testing.T) {
		out, err := run(t, "fuzzy", "--db", db, "--query", "Sped Limits")
		require.NoError(t, err)
		assert.Contains(t, out, "Speed Limits")
	})

	t.Run("fulltext", func(t *testing.T) {
		out, err := run(t, "fulltext", "--db", db, "--query", "noise at night")
		require.NoError(t, err)
		assert.Contains(t, out, "Noise Control")
		assert.NotContains(t, out, "Parking Rules")
	})

	t.Run("export", func(t *testing.T) {
		out, err := run(t, "export", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, "statutes:")
		assert.Contains(t, out, "id: s3")
	})
}

func TestRemoveKeepsHistory(t *testing.T) {
	db := loadedDB(t)

	out, err := run(t, "remove", "--db", db, "--id", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed s2 at version 1")

	_, err = run(t, "get", "--db", db, "--id", "s2")
	require.Error(t, err, "removal is persisted")

	out, err = run(t, "history", "--db", db, "--id", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "Parking Rules")

	out, err = run(t, "get", "--db", db, "--id", "s2", "--version", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Digest:")

	out, err = run(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Statutes:  2")
	assert.Contains(t, out, "Removed:   1")
	assert.Contains(t, out, "Versions:  3")
}

func TestLoadFailures(t *testing.T) {
	db := loadedDB(t)
	dup := writeFixture(t, `
statutes:
  - id: s1
    title: Duplicate
    effect: {kind: obligation, description: clash}
  - id: s9
    title: Fresh
    effect: {kind: obligation, description: new}
`)

	t.Run("abort keeps nothing past the failure", func(t *testing.T) {
		out, err := run(t, "load", "--db", db, "--file", dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 statutes failed to load")
		assert.Contains(t, out, "Loaded 0 of 2 statutes")
	})

	t.Run("continue loads the rest", func(t *testing.T) {
		out, err := run(t, "load", "--db", db, "--file", dup, "--continue-on-error")
		require.Error(t, err)
		assert.Contains(t, out, "Loaded 1 of 2 statutes")
		assert.Contains(t, out, "#0 s1")

		out, err = run(t, "get", "--db", db, "--id", "s9")
		require.NoError(t, err)
		assert.Contains(t, out, "Fresh")
	})

	t.Run("validate rejects invalid statutes", func(t *testing.T) {
		invalid := writeFixture(t, "statutes:\n  - id: bad\n    title: \"\"\n")
		out, err := run(t, "load", "--db", db, "--file", invalid, "--validate")
		require.Error(t, err)
		assert.Contains(t, out, "title: must not be empty")
	})
}

func TestRequiredFlags(t *testing.T) {
	_, err := run(t, "get", "--id", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")

	_, err = run(t, "load", "--db", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestCacheSizeFlag(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		app := newApp()
		var flag *cli.IntFlag
		for _, f := range app.Flags {
			if f, ok := f.(*cli.IntFlag); ok && f.Name == "cache-size" {
				flag = f
			}
		}
		require.NotNil(t, flag)
		assert.Equal(t, 512, flag.Value)
	})

	t.Run("negative is rejected", func(t *testing.T) {
		db := loadedDB(t)
		_, err := run(t, "--cache-size", "-1", "list", "--db", db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CacheSize")
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"WaRn", slog.LevelWarn},
			{"ERROR", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
				assert.True(t, slog.Default().Enabled(t.Context(), tc.expected))
				assert.False(t, slog.Default().Enabled(t.Context(), tc.expected-1))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		_, err := run(t, "--log-level", "invalid", "stats", "--db", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
