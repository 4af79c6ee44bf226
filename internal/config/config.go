package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Internal  InternalConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AnalyticsConfig holds the upstream analytics API credentials. These are
// only required by the analytics proxy endpoint, so missing values are not a
// startup failure; the endpoint reports them at request time.
type AnalyticsConfig struct {
	BaseURL   string
	ProjectID string
	TeamID    string
	Token     string
}

// InternalConfig holds the shared secret protecting internal endpoints
type InternalConfig struct {
	APIKey string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("ANALYTICS_BASE_URL", "https://api.vercel.com")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Analytics: AnalyticsConfig{
			BaseURL:   viper.GetString("ANALYTICS_BASE_URL"),
			ProjectID: viper.GetString("ANALYTICS_PROJECT_ID"),
			TeamID:    viper.GetString("ANALYTICS_TEAM_ID"),
			Token:     viper.GetString("ANALYTICS_API_TOKEN"),
		},
		Internal: InternalConfig{
			APIKey: viper.GetString("INTERNAL_API_KEY"),
		},
	}
}

// Validate reports fatal configuration problems. Every code path touches the
// catalog store, so missing store credentials fail startup instead of
// producing a partially working server.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.Database.Database == "" {
		missing = append(missing, "DB_DATABASE")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN renders the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}
