package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like LLM_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so the process works when
// launched from the repo root, a cmd directory, or a test package.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "certverify"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-oss:20b"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	if cfg.LLM.MaxAttempts == 0 {
		cfg.LLM.MaxAttempts = 3
	}
	if cfg.Browser.Timeout == 0 {
		cfg.Browser.Timeout = 20 * time.Second
	}
	if cfg.Browser.MaxSessions == 0 {
		cfg.Browser.MaxSessions = 4
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.Scraper.MaxPDFs == 0 {
		cfg.Scraper.MaxPDFs = 5
	}
	if cfg.Scraper.MinTextLength == 0 {
		cfg.Scraper.MinTextLength = 200
	}
	if cfg.Scraper.RequestTimeout == 0 {
		cfg.Scraper.RequestTimeout = 30 * time.Second
	}
	if cfg.Scraper.MaxAttempts == 0 {
		cfg.Scraper.MaxAttempts = 3
	}
	if cfg.Verifier.ExternalScoreThreshold == 0 {
		cfg.Verifier.ExternalScoreThreshold = 0.7
	}
	if cfg.Verifier.ForensicScoreThreshold == 0 {
		cfg.Verifier.ForensicScoreThreshold = 70
	}
	if cfg.Verifier.CacheTTL == 0 {
		cfg.Verifier.CacheTTL = 24 * time.Hour
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if len(cfg.Checks.BrandColors) == 0 {
		cfg.Checks.BrandColors = map[string][]string{
			"NPTEL":     {"#F58220"},
			"Coursera":  {"#0056D2"},
			"IIT":       {"#A52A2A"},
			"GUVI":      {"#00C853"},
			"Cisco":     {"#1BA0E2"},
			"Microsoft": {"#F25022", "#7FBA00", "#00A4EF", "#FFB900"},
		}
	}
	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.Verifier.ExternalScoreThreshold <= 0 || cfg.Verifier.ExternalScoreThreshold > 1 {
		return fmt.Errorf("verifier.external_score_threshold must be in (0,1]")
	}
	if cfg.Verifier.ForensicScoreThreshold <= 0 || cfg.Verifier.ForensicScoreThreshold > 100 {
		return fmt.Errorf("verifier.forensic_score_threshold must be in (0,100]")
	}
	if cfg.Scraper.MaxPDFs < 0 {
		return fmt.Errorf("scraper.max_pdfs must be non-negative")
	}
	return nil
}
