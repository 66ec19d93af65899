package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teemow/calbridge/internal/apierror"
)

// Config holds all externally supplied settings. It is built once at startup
// and passed into components at construction time; nothing reads the process
// environment ad hoc.
type Config struct {
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendURL        string `mapstructure:"FRONTEND_URL"`
	HTTPAddr           string `mapstructure:"HTTP_ADDR"`
	DBPath             string `mapstructure:"DB_PATH"`
	MetricsEnabled     bool   `mapstructure:"METRICS_ENABLED"`
	MetricsAddr        string `mapstructure:"METRICS_ADDR"`
}

var envs = []string{
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
	"FRONTEND_URL", "HTTP_ADDR", "DB_PATH", "METRICS_ENABLED", "METRICS_ADDR",
}

// Load reads configuration from an optional .env file in the working
// directory, overlaid by process environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.AddConfigPath("./")
	v.SetConfigFile(".env")
	// A missing .env file is fine; env vars alone are a valid configuration.
	_ = v.ReadInConfig()

	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("DB_PATH", "calbridge.db")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_ADDR", ":9090")

	var config Config
	for _, env := range envs {
		if err := v.BindEnv(env); err != nil {
			return config, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// ValidateOAuth checks that the settings required for the OAuth flow are
// present. Operations depending on them fail here, before any network call.
func (c Config) ValidateOAuth() error {
	if c.GoogleClientID == "" {
		return apierror.Configuration("Google OAuth configuration is missing: client id")
	}
	if c.GoogleClientSecret == "" {
		return apierror.Configuration("Google OAuth configuration is missing: client secret")
	}
	if c.GoogleRedirectURL == "" {
		return apierror.Configuration("Google OAuth configuration is missing: redirect URL")
	}
	return nil
}
