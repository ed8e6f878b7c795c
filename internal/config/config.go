package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
	"github.com/joho/godotenv"
)

type Config struct {
	GitHubToken       string
	GitHubUsername    string
	DBURL             string
	MigrationsPath    string
	RefreshInterval   string
	CacheTTL          string
	CacheRefreshOn304 bool
	CommitLimit       int
	FetchConcurrency  int
	RabbitMQURL       string
	Timezone          string
	ServerPort        string
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// * LoadConfiguration reads the configuration from the .env file and the
// * environment and returns a pointer to a Config
func LoadConfiguration() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		GitHubUsername:  os.Getenv("GITHUB_USERNAME"),
		DBURL:           os.Getenv("DB_URL"),
		MigrationsPath:  envOrDefault("MIGRATIONS_PATH", "file://migrations"),
		RefreshInterval: envOrDefault("REFRESH_INTERVAL", "15m"),
		CacheTTL:        envOrDefault("CACHE_TTL", "15m"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		Timezone:        envOrDefault("TIMEZONE", "UTC"),
		ServerPort:      envOrDefault("SERVER_PORT", ":8081"),
	}

	if cfg.GitHubUsername == "" {
		return nil, errors.New("GITHUB_USERNAME is required")
	}
	if !usernamePattern.MatchString(cfg.GitHubUsername) {
		return nil, fmt.Errorf("GITHUB_USERNAME %q is not a valid GitHub username", cfg.GitHubUsername)
	}

	var err error
	if cfg.CacheRefreshOn304, err = envBool("CACHE_REFRESH_ON_304", false); err != nil {
		return nil, err
	}
	if cfg.CommitLimit, err = envPositiveInt("COMMIT_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = envPositiveInt("FETCH_CONCURRENCY", 1); err != nil {
		return nil, err
	}

	logger.Info("✅ env content loaded successfully 🎉")
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func envPositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
