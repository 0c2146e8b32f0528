package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minJWTSecretLength = 32

type Config struct {
	ServerPort              string        `env:"SERVER_PORT, default=8080"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT, default=10s"`
	ServerReadTimeout       time.Duration `env:"SERVER_READ_TIMEOUT, default=15s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT, default=30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT, default=120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT, default=30s"`

	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS, default=20"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS, default=5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME, default=30m"`
	MigrateOnStart    bool          `env:"DB_MIGRATE_ON_START, default=true"`

	JWTSecret  string        `env:"JWT_SECRET"`
	JWTTTL     time.Duration `env:"JWT_TTL, default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`

	SeedOnStart  bool   `env:"SEED_ON_START, default=true"`
	SeedPassword string `env:"SEED_PASSWORD, default=1234"`

	CORSOrigins     []string `env:"CORS_ORIGINS, default=*"`
	LogLevel        string   `env:"LOG_LEVEL, default=info"`
	LogFormat       string   `env:"LOG_FORMAT, default=pretty"`
	OpenAPISpecPath string   `env:"OPENAPI_SPEC_PATH, default=./docs/openapi.yaml"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.SeedOnStart && strings.TrimSpace(c.SeedPassword) == "" {
		return fmt.Errorf("SEED_PASSWORD cannot be empty when SEED_ON_START is enabled")
	}

	switch strings.ToLower(c.LogFormat) {
	case "pretty", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
