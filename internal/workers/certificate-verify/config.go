package certificateverify

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Verification renders pages, runs OCR and may drive a browser.
		Timeout: 5 * time.Minute,
	}
}
