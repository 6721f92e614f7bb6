package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application's configuration.
type Config struct {
	App struct {
		Env     string `yaml:"env"`
		Version string `yaml:"version"`
	} `yaml:"app"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Server   struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
}

// DatabaseConfig selects the SQL driver and its data source.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// AuthConfig is passed to the token service; the secret is never rotated at runtime.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Env = "dev"
	cfg.App.Version = "1.0.0"
	cfg.Log.Level = "info"
	cfg.Database.Driver = DriverPostgres
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Server.Port = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	return cfg
}

// LoadConfig reads configuration from the specified YAML file. A missing file is
// not an error: defaults plus environment variables are enough to run.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	file, err := os.Open(configPath)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	config.applyEnv()
	config.Server.Port = listenAddr(config.Server.Port)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"APP_ENV":         &c.App.Env,
		"LOG_LEVEL":       &c.Log.Level,
		"DATABASE_DRIVER": &c.Database.Driver,
		"DATABASE_URL":    &c.Database.URL,
		"JWT_SECRET":      &c.Auth.JWTSecret,
		"SERVER_PORT":     &c.Server.Port,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
}

// listenAddr turns a bare port such as "8080" into ":8080"; host:port values pass through.
func listenAddr(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// Validate reports the first configuration problem that would stop the server from working.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) must be set")
	}
	return nil
}
