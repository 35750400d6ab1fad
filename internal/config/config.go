package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/spf13/viper"
)

// Storage drivers understood by the repository wiring
const (
	StorageMongoDB  = "mongodb"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Draw     DrawConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// StorageConfig selects where the draw state is persisted
type StorageConfig struct {
	Driver       string
	WriteTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	DSN string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // Seconds
}

// AdminConfig holds the operator credentials. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string
	PasswordHash string
	LoginRate    float64 // Login attempts per second per client
	LoginBurst   int
}

// DrawConfig holds the static tier table and presentation timing
type DrawConfig struct {
	Tiers            []models.Tier
	CountdownSeconds int
}

// DefaultTiers mirrors the prize table the display was built around
func DefaultTiers() []models.Tier {
	return []models.Tier{
		{Key: "3rd", Label: "Third Prize", Count: 45},
		{Key: "2nd", Label: "Second Prize", Count: 35},
		{Key: "1st", Label: "First Prize", Count: 25},
	}
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(config.Draw.Tiers) == 0 {
		config.Draw.Tiers = DefaultTiers()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the tier table and storage selection
func (c *Config) Validate() error {
	if err := ValidateTiers(c.Draw.Tiers); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case StorageMongoDB, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Draw.CountdownSeconds < 0 {
		return errors.New("draw countdown must not be negative")
	}
	return nil
}

// ValidateTiers requires at least one tier, unique non-empty keys and positive counts
func ValidateTiers(tiers []models.Tier) error {
	if len(tiers) == 0 {
		return errors.New("at least one prize tier must be configured")
	}
	seen := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		if strings.TrimSpace(t.Key) == "" {
			return errors.New("prize tier key must not be empty")
		}
		if seen[t.Key] {
			return fmt.Errorf("duplicate prize tier key %q", t.Key)
		}
		seen[t.Key] = true
		if t.Count <= 0 {
			return fmt.Errorf("prize tier %q must have a positive winner count", t.Key)
		}
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 5*time.Second)
	v.SetDefault("Storage.Driver", StorageMongoDB)
	v.SetDefault("Storage.WriteTimeout", 3*time.Second)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "prizedraw")
	v.SetDefault("Postgres.DSN", "postgres://localhost:5432/prizedraw?sslmode=disable")
	v.SetDefault("JWT.Secret", "")          // registered so JWT_SECRET reaches Unmarshal
	v.SetDefault("JWT.ExpiresIn", 12*60*60) // 12 hours
	v.SetDefault("Admin.Username", "admin")
	v.SetDefault("Admin.PasswordHash", "")
	v.SetDefault("Admin.LoginRate", 0.2)
	v.SetDefault("Admin.LoginBurst", 5)
	v.SetDefault("Draw.CountdownSeconds", 5)
	v.SetDefault("LogLevel", "info")
}
