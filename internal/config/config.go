package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Scraping ScrapingConfig `yaml:"scraping"`
	Database DatabaseConfig `yaml:"database"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type ScrapingConfig struct {
	Espc EspcConfig `yaml:"espc"`
}

type EspcConfig struct {
	SiteOrigin     string        `yaml:"site_origin"`
	SearchURL      string        `yaml:"search_url"`
	PageDelay      time.Duration `yaml:"page_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
	OutputPath     string        `yaml:"output_path"`
}

// DatabaseConfig is optional; an empty URL disables the Postgres sink.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

// Default returns the fixed Edinburgh search the scraper runs with when no
// configuration files are present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "espc-sys",
			Env:      "development",
			Port:     8080,
			LogLevel: "info",
		},
		Scraping: ScrapingConfig{
			Espc: EspcConfig{
				SiteOrigin:     "https://espc.com",
				SearchURL:      "https://espc.com/properties?locations=edinburgh&minbeds=2plus&maxprice=300000",
				PageDelay:      2 * time.Second,
				RequestTimeout: 30 * time.Second,
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.5112.102 Safari/537.36",
				OutputPath:     "espc.csv",
			},
		},
		Database: DatabaseConfig{
			MaxConns: 2,
		},
	}
}

// LoadConfig layers <dir>/app.yaml, <dir>/scraping.yaml, a .env file and the
// process environment over Default. Missing files are skipped.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	// Carrega arquivo YAML base
	if err := loadYAML(filepath.Join(dir, "app.yaml"), cfg); err != nil {
		return nil, err
	}

	// Carrega configurações específicas de scraping
	if err := loadYAML(filepath.Join(dir, "scraping.yaml"), &cfg.Scraping); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	espc := &cfg.Scraping.Espc
	espc.SearchURL = getEnv("ESPC_SEARCH_URL", espc.SearchURL)
	espc.OutputPath = getEnv("ESPC_OUTPUT_PATH", espc.OutputPath)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	if v := os.Getenv("ESPC_PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: ESPC_PAGE_DELAY: %w", err)
		}
		espc.PageDelay = d
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT: %w", err)
		}
		cfg.App.Port = port
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
