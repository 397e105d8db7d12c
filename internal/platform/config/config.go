package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/akalinowski/nbp-rates-etl/internal/apperrors"
)

const defaultNBPAPIURL = "https://api.nbp.pl/api/exchangerates/tables/A/"

// Config holds application configuration.
type Config struct {
	DatabaseURL string
	NBPAPIURL   string
	HTTPTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Missing required database parameters are a fatal startup
// error; nothing downstream is attempted without them.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("NBP_API_URL", defaultNBPAPIURL)
	viper.SetDefault("HTTP_TIMEOUT", "10s")
	viper.AutomaticEnv()

	user := viper.GetString("POSTGRES_USER")
	password := viper.GetString("POSTGRES_PASSWORD")
	host := viper.GetString("POSTGRES_HOST")
	port := viper.GetString("POSTGRES_PORT")
	dbName := viper.GetString("POSTGRES_DB")

	var missing []string
	for _, v := range []struct{ name, value string }{
		{"POSTGRES_USER", user},
		{"POSTGRES_PASSWORD", password},
		{"POSTGRES_HOST", host},
		{"POSTGRES_DB", dbName},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: environment variables not set: %s",
			apperrors.ErrConfig, strings.Join(missing, ", "))
	}

	timeoutStr := viper.GetString("HTTP_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 10 * time.Second
		slog.Warn("Invalid value for HTTP_TIMEOUT, using default",
			slog.String("value", timeoutStr), slog.Duration("default", timeout))
	}

	return &Config{
		DatabaseURL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			url.QueryEscape(user), url.QueryEscape(password), host, port, dbName),
		NBPAPIURL:   viper.GetString("NBP_API_URL"),
		HTTPTimeout: timeout,
	}, nil
}
