package config

import (
	"embed"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesFS embed.FS

type Category struct {
	Label string `yaml:"label"`
	Slug  string `yaml:"slug"`
}

type Categories struct {
	Entries []Category `yaml:"categories"`
}

// Slug resolves a display label to its API slug. Labels missing from the
// table pass through lower-cased so new upstream categories keep working.
func (c *Categories) Slug(label string) string {
	for _, e := range c.Entries {
		if strings.EqualFold(e.Label, label) {
			return e.Slug
		}
	}
	return strings.ToLower(strings.TrimSpace(label))
}

func (c *Categories) Labels() []string {
	labels := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		labels = append(labels, e.Label)
	}
	return labels
}

type Config struct {
	NewsAPIURL      string
	NewsAPIKey      string
	AuthAPIURL      string
	UseMockNews     bool
	CacheTTL        time.Duration
	DebounceDelay   time.Duration
	RequestTimeout  time.Duration
	RequestRate     float64
	RequestBurst    int
	WatchInterval   time.Duration
	WatchCategories []string
	ServerPort      string
	OTLPEndpoint    string
	TracingEnabled  bool
	Categories      *Categories
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Parse comma-separated list of categories to watch
	watch := os.Getenv("WATCH_CATEGORIES")
	if watch == "" {
		watch = "All"
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		NewsAPIURL:      getEnv("NEWS_API_URL", "http://localhost:8081"),
		NewsAPIKey:      getEnv("NEWS_API_KEY", ""),
		AuthAPIURL:      getEnv("AUTH_API_URL", "http://localhost:8081"),
		UseMockNews:     getBoolEnv("USE_MOCK_NEWS", false),
		CacheTTL:        getDurationEnv("CACHE_TTL", 15*time.Minute),
		DebounceDelay:   getDurationEnv("DEBOUNCE_DELAY", 300*time.Millisecond),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		RequestRate:     getFloatEnv("REQUEST_RATE", 0),
		RequestBurst:    getIntEnv("REQUEST_BURST", 1),
		WatchInterval:   getDurationEnv("WATCH_INTERVAL", 1*time.Minute),
		WatchCategories: strings.Split(watch, ","),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
	cfg.Categories = loadCategories()
	return cfg
}

func loadCategories() *Categories {
	data, err := categoriesFS.ReadFile("categories.yaml")
	if err != nil {
		slog.Error("Could not read embedded categories.yaml", "error", err)
		return &Categories{}
	}
	var cats Categories
	if err := yaml.Unmarshal(data, &cats); err != nil {
		slog.Error("Error decoding categories.yaml", "error", err)
		return &Categories{}
	}
	return &cats
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		// Try parsing as duration string (e.g. "1m", "60s")
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Try parsing as integer seconds
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
