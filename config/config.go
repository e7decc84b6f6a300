package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Mongo     MongoConfig
	Scheduler SchedulerConfig
	Scraper   ScraperConfig
	APIAddr   string
	LogLevel  string
	Searches  map[string]*SearchConfig
}

type MongoConfig struct {
	URI       string
	Database  string
	Retention time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ScraperConfig struct {
	DelayMS     int
	MaxAttempts int
}

// SearchConfig is one saved search loaded from config/searches/*.yaml. The
// scheduler walks every enabled search on each tick.
type SearchConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	SearchURL string `yaml:"search_url"`
	Enabled   bool   `yaml:"enabled"`
	MaxPages  int    `yaml:"max_pages"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Mongo: MongoConfig{
			URI:       mongoURI(),
			Database:  getEnv("MONGO_DATABASE", "polovni"),
			Retention: getEnvDuration("CAR_RETENTION", 72*time.Hour),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Scraper: ScraperConfig{
			DelayMS:     getEnvInt("SCRAPE_DELAY_MS", 500),
			MaxAttempts: getEnvInt("SCRAPE_MAX_ATTEMPTS", 3),
		},
		APIAddr:  getEnv("API_ADDR", ":8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Searches: make(map[string]*SearchConfig),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSearchConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mongoURI prefers the full MONGODB_URL and otherwise assembles one from the
// individual MONGO_* pieces, escaping credentials.
func mongoURI() string {
	if uri := os.Getenv("MONGODB_URL"); uri != "" {
		return uri
	}

	host := getEnv("MONGO_HOST", "localhost")
	port := getEnv("MONGO_PORT", "27017")
	user := os.Getenv("MONGO_USER")
	pass := os.Getenv("MONGO_PASSWORD")
	if user == "" {
		return fmt.Sprintf("mongodb://%s:%s", host, port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, port)
}

func (c *Config) loadSearchConfigs() error {
	configDir := "config/searches"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var search SearchConfig
		if err := yaml.Unmarshal(data, &search); err != nil {
			return err
		}

		c.Searches[search.ID] = &search
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
