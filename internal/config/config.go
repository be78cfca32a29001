// Package config loads server settings from environment variables, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string
	Port string
}

// TLSConfig holds the optional TLS listener settings.
type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string
}

// QuotaConfig holds plan ceilings; 0 means unlimited.
type QuotaConfig struct {
	Generations int
	Downloads   int
}

// Config is the full server configuration.
type Config struct {
	Server ServerConfig
	TLS    TLSConfig
	Quota  QuotaConfig

	DataPath     string
	DBPath       string
	GeminiAPIKey string
	TTSAPIKey    string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func LoadConfig() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config.godotenv: %v", err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8080")
	v.SetDefault("TLS_ENABLED", false)
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_KEY_FILE", "")
	v.SetDefault("TLS_MIN_VERSION", "1.2")
	v.SetDefault("DATA_PATH", "./data")
	v.SetDefault("DB_PATH", "./data/lessons.db")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GOOGLE_TTS_API_KEY", "")
	v.SetDefault("QUOTA_GENERATIONS", 0)
	v.SetDefault("QUOTA_DOWNLOADS", 0)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host: v.GetString("HOST"),
			Port: v.GetString("PORT"),
		},
		TLS: TLSConfig{
			Enabled:    v.GetBool("TLS_ENABLED"),
			CertFile:   v.GetString("TLS_CERT_FILE"),
			KeyFile:    v.GetString("TLS_KEY_FILE"),
			MinVersion: v.GetString("TLS_MIN_VERSION"),
		},
		Quota: QuotaConfig{
			Generations: v.GetInt("QUOTA_GENERATIONS"),
			Downloads:   v.GetInt("QUOTA_DOWNLOADS"),
		},
		DataPath:     v.GetString("DATA_PATH"),
		DBPath:       v.GetString("DB_PATH"),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		TTSAPIKey:    v.GetString("GOOGLE_TTS_API_KEY"),
	}
}
