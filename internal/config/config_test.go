package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, cookiePath, databaseURI string) {
	t.Helper()
	t.Setenv("COOKIE_PATH", cookiePath)
	t.Setenv("DATABASE_URI", databaseURI)
	t.Setenv("LOG_LEVEL", "")
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "cookies.json", "mongodb://localhost:27017")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "cookies.json", cfg.Env.CookiePath)
	require.Equal(t, "mongodb://localhost:27017", cfg.Env.DatabaseURI)
	require.Equal(t, 10000, cfg.Scraper.ScrollMinPixels)
	require.Equal(t, 12000, cfg.Scraper.ScrollMaxPixels)
	require.Equal(t, "chromedp", cfg.Browser.Driver)
	require.Equal(t, "fb_normal_posts", cfg.Database.PostsCollection)
}

func TestLoadMissingEnv(t *testing.T) {
	setEnv(t, "", "")
	os.Unsetenv("COOKIE_PATH")
	os.Unsetenv("DATABASE_URI")

	_, err := Load("")
	require.ErrorIs(t, err, ErrMissingEnv)
}

func TestLoadEmptyEnv(t *testing.T) {
	setEnv(t, "cookies.json", "")

	_, err := Load("")
	require.ErrorIs(t, err, ErrMissingEnv)
}

func TestLoadYamlOverrides(t *testing.T) {
	setEnv(t, "cookies.json", "postgres://localhost/fb")
	t.Setenv("LOG_LEVEL", "debug")

	file := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(file, []byte(`
browser:
  driver: selenium
  headless: false
scraper:
  wait_min_ms: 100
  wait_max_ms: 200
  max_cycles: 7
database:
  name: scrapes
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "selenium", cfg.Browser.Driver)
	require.False(t, cfg.Browser.Headless)
	require.Equal(t, 7, cfg.Scraper.MaxCycles)
	require.Equal(t, "scrapes", cfg.Database.Name)
	require.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	require.Equal(t, 10000, cfg.Scraper.ScrollMinPixels)

	min, max := cfg.Scraper.WaitBounds()
	require.Equal(t, int64(100), min.Milliseconds())
	require.Equal(t, int64(200), max.Milliseconds())
}

func TestLoadRejectsBadBounds(t *testing.T) {
	setEnv(t, "cookies.json", "mongodb://localhost")

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("scraper:\n  scroll_min_pixels: 500\n  scroll_max_pixels: 100\n"), 0644))

	_, err := Load(file)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	setEnv(t, "cookies.json", "mongodb://localhost")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
