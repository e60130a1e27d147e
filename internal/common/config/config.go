package config

import "time"

// Config is the root configuration for the verifier process.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	LLM      LLMConfig               `mapstructure:"llm"`
	Browser  BrowserConfig           `mapstructure:"browser"`
	OCR      OCRConfig               `mapstructure:"ocr"`
	Scraper  ScraperConfig           `mapstructure:"scraper"`
	Checks   ChecksConfig            `mapstructure:"checks"`
	Verifier VerifierConfig          `mapstructure:"verifier"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress string `mapstructure:"broker_address"`
	Plaintext     bool   `mapstructure:"plaintext"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type BrowserConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

type OCRConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Languages []string `mapstructure:"languages"`
}

type ScraperConfig struct {
	MaxPDFs        int           `mapstructure:"max_pdfs"`
	MinTextLength  int           `mapstructure:"min_text_length"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
}

type ChecksConfig struct {
	// BrandColors maps issuer name to official hex colors used by the
	// color/brand check.
	BrandColors map[string][]string `mapstructure:"brand_colors"`
}

type VerifierConfig struct {
	ExternalScoreThreshold float64       `mapstructure:"external_score_threshold"`
	ForensicScoreThreshold float64       `mapstructure:"forensic_score_threshold"`
	CacheTTL               time.Duration `mapstructure:"cache_ttl"`
	CacheEnabled           bool          `mapstructure:"cache_enabled"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
