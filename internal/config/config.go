package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var ErrMissingEnv = errors.New("missing required environment configuration")

type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Env is never read from the yaml file.
	Env EnvConfig `yaml:"-"`
}

// EnvConfig holds the session credentials and store location. Both are
// required; a process cannot start without them.
type EnvConfig struct {
	CookiePath  string `env:"COOKIE_PATH,required"`
	DatabaseURI string `env:"DATABASE_URI,required"`
	LogLevel    string `env:"LOG_LEVEL"`
}

type BrowserConfig struct {
	Driver          string `yaml:"driver"`
	Headless        bool   `yaml:"headless"`
	UserAgent       string `yaml:"user_agent"`
	ExecPath        string `yaml:"exec_path"`
	GeckoDriverPath string `yaml:"geckodriver_path"`
	SeleniumPort    int    `yaml:"selenium_port"`
}

type ScraperConfig struct {
	BaseURL         string `yaml:"base_url"`
	ScrollMinPixels int    `yaml:"scroll_min_pixels"`
	ScrollMaxPixels int    `yaml:"scroll_max_pixels"`
	WaitMinMillis   int    `yaml:"wait_min_ms"`
	WaitMaxMillis   int    `yaml:"wait_max_ms"`
	DetailWaitMin   int    `yaml:"detail_wait_min_ms"`
	DetailWaitMax   int    `yaml:"detail_wait_max_ms"`
	SelectorTimeout int    `yaml:"selector_timeout"`
	MaxCycles       int    `yaml:"max_cycles"`
	RunTimeout      int    `yaml:"run_timeout"`
	DefaultMaxPosts int    `yaml:"default_max_posts"`
	OutputDir       string `yaml:"output_dir"`
	MetricsFile     string `yaml:"metrics_file"`
}

type DatabaseConfig struct {
	Name              string `yaml:"name"`
	PostsCollection   string `yaml:"posts_collection"`
	DetailsCollection string `yaml:"details_collection"`
	ImagesCollection  string `yaml:"images_collection"`
	ConnectTimeout    int    `yaml:"connect_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the tuning values the scrapers run with when no config
// file is given.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Driver:       "chromedp",
			Headless:     true,
			UserAgent:    "Mozilla/5.0 (iPad; CPU OS 6_0 like Mac OS X) AppleWebKit/536.26 (KHTML, like Gecko) Version/6.0 Mobile/10A5376e Safari/8536.25",
			SeleniumPort: 4444,
		},
		Scraper: ScraperConfig{
			BaseURL:         "https://www.facebook.com",
			ScrollMinPixels: 10000,
			ScrollMaxPixels: 12000,
			WaitMinMillis:   3000,
			WaitMaxMillis:   5000,
			DetailWaitMin:   1000,
			DetailWaitMax:   3000,
			SelectorTimeout: 10,
			RunTimeout:      30,
			DefaultMaxPosts: 5,
			OutputDir:       "./downloads",
			MetricsFile:     "data/metrics.json",
		},
		Database: DatabaseConfig{
			Name:              "facebook",
			PostsCollection:   "fb_normal_posts",
			DetailsCollection: "fb_single_posts",
			ImagesCollection:  "fb_image_records",
			ConnectTimeout:    10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration once per process: defaults, then the
// optional yaml file, then the environment (.env is optional).
func Load(configFile string) (*Config, error) {
	// .env file is optional, so don't fail if it doesn't exist
	_ = godotenv.Load()

	config := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}

		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(&config.Env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingEnv, err)
	}
	if config.Env.CookiePath == "" || config.Env.DatabaseURI == "" {
		return nil, fmt.Errorf("%w: COOKIE_PATH and DATABASE_URI must not be empty", ErrMissingEnv)
	}

	if config.Env.LogLevel != "" {
		config.Logging.Level = config.Env.LogLevel
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	s := c.Scraper
	if s.ScrollMinPixels < 0 || s.ScrollMinPixels > s.ScrollMaxPixels {
		return fmt.Errorf("invalid scroll bounds: %d..%d", s.ScrollMinPixels, s.ScrollMaxPixels)
	}
	if s.WaitMinMillis < 0 || s.WaitMinMillis > s.WaitMaxMillis {
		return fmt.Errorf("invalid wait bounds: %d..%d", s.WaitMinMillis, s.WaitMaxMillis)
	}
	if s.DetailWaitMin < 0 || s.DetailWaitMin > s.DetailWaitMax {
		return fmt.Errorf("invalid detail wait bounds: %d..%d", s.DetailWaitMin, s.DetailWaitMax)
	}
	switch c.Browser.Driver {
	case "chromedp", "selenium":
	default:
		return fmt.Errorf("unknown browser driver: %s", c.Browser.Driver)
	}
	return nil
}

func (s ScraperConfig) WaitBounds() (time.Duration, time.Duration) {
	return time.Duration(s.WaitMinMillis) * time.Millisecond, time.Duration(s.WaitMaxMillis) * time.Millisecond
}

func (s ScraperConfig) DetailWaitBounds() (time.Duration, time.Duration) {
	return time.Duration(s.DetailWaitMin) * time.Millisecond, time.Duration(s.DetailWaitMax) * time.Millisecond
}
