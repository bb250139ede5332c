package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Store     StoreConfig
	Discovery DiscoveryConfig
	Breaker   BreakerConfig
	OTEL      OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env      string
	LogLevel string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// FacilityTTLSeconds bounds how long facility records and summaries stay cached.
	FacilityTTLSeconds int
	// ResponseTTLSeconds bounds how long GET responses stay cached.
	ResponseTTLSeconds int
}

// StoreConfig selects the data store backing the discovery engine
type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver string
	// SeedFile is a JSON dataset loaded by the memory driver.
	SeedFile string
}

// DiscoveryConfig holds discovery engine tuning
type DiscoveryConfig struct {
	// StrictRadius drops nearby candidates that are inside the bounding box but beyond the radius.
	StrictRadius            bool
	DefaultPageSize         int
	MaxPageSize             int
	FacilitySearchLimit     int
	PractitionerSearchLimit int
	StoreTimeout            time.Duration
}

// BreakerConfig holds circuit breaker settings for data store calls
type BreakerConfig struct {
	Enabled      bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. When CONFIG_FILE points to a YAML
// file its values replace the built-in defaults; environment variables still win.
func Load() (*Config, error) {
	k := koanf.New(".")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	d := fileDefaults{k: k}

	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", d.str("app.env", "production")),
			LogLevel: getEnv("LOG_LEVEL", d.str("app.log_level", "info")),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", d.str("server.host", "0.0.0.0")),
			Port:           getEnvAsInt("SERVER_PORT", d.int("server.port", 8080)),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", d.str("server.allowed_origins", "*"))),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", d.str("database.host", "localhost")),
			Port:     getEnvAsInt("DB_PORT", d.int("database.port", 5432)),
			User:     getEnv("DB_USER", d.str("database.user", "postgres")),
			Password: getEnv("DB_PASSWORD", d.str("database.password", "")),
			Database: getEnv("DB_NAME", d.str("database.name", "medilink")),
			SSLMode:  getEnv("DB_SSLMODE", d.str("database.sslmode", "disable")),
		},
		Redis: RedisConfig{
			Enabled:            getEnvAsBool("REDIS_ENABLED", d.bool("redis.enabled", true)),
			Host:               getEnv("REDIS_HOST", d.str("redis.host", "localhost")),
			Port:               getEnvAsInt("REDIS_PORT", d.int("redis.port", 6379)),
			Password:           getEnv("REDIS_PASSWORD", d.str("redis.password", "")),
			DB:                 getEnvAsInt("REDIS_DB", d.int("redis.db", 0)),
			FacilityTTLSeconds: getEnvAsInt("REDIS_FACILITY_TTL_SECONDS", d.int("redis.facility_ttl_seconds", 300)),
			ResponseTTLSeconds: getEnvAsInt("REDIS_RESPONSE_TTL_SECONDS", d.int("redis.response_ttl_seconds", 120)),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", d.str("store.driver", "postgres")),
			SeedFile: getEnv("STORE_SEED_FILE", d.str("store.seed_file", "")),
		},
		Discovery: DiscoveryConfig{
			StrictRadius:            getEnvAsBool("DISCOVERY_STRICT_RADIUS", d.bool("discovery.strict_radius", false)),
			DefaultPageSize:         getEnvAsInt("DISCOVERY_DEFAULT_PAGE_SIZE", d.int("discovery.default_page_size", 20)),
			MaxPageSize:             getEnvAsInt("DISCOVERY_MAX_PAGE_SIZE", d.int("discovery.max_page_size", 100)),
			FacilitySearchLimit:     getEnvAsInt("DISCOVERY_FACILITY_SEARCH_LIMIT", d.int("discovery.facility_search_limit", 20)),
			PractitionerSearchLimit: getEnvAsInt("DISCOVERY_PRACTITIONER_SEARCH_LIMIT", d.int("discovery.practitioner_search_limit", 50)),
			StoreTimeout:            getEnvAsDuration("DISCOVERY_STORE_TIMEOUT", d.duration("discovery.store_timeout", 3*time.Second)),
		},
		Breaker: BreakerConfig{
			Enabled:      getEnvAsBool("BREAKER_ENABLED", d.bool("breaker.enabled", true)),
			MaxRequests:  uint32(getEnvAsInt("BREAKER_MAX_REQUESTS", d.int("breaker.max_requests", 1))),
			Interval:     getEnvAsDuration("BREAKER_INTERVAL", d.duration("breaker.interval", time.Minute)),
			Timeout:      getEnvAsDuration("BREAKER_TIMEOUT", d.duration("breaker.timeout", 30*time.Second)),
			MinRequests:  uint32(getEnvAsInt("BREAKER_MIN_REQUESTS", d.int("breaker.min_requests", 5))),
			FailureRatio: getEnvAsFloat("BREAKER_FAILURE_RATIO", d.float("breaker.failure_ratio", 0.6)),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", d.str("otel.service_name", "medilink-discovery")),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", d.str("otel.service_version", "1.0.0")),
			Endpoint:       getEnv("OTEL_ENDPOINT", d.str("otel.endpoint", "")),
			Enabled:        getEnvAsBool("OTEL_ENABLED", d.bool("otel.enabled", false)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Discovery.DefaultPageSize <= 0 {
		return fmt.Errorf("DISCOVERY_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.Discovery.MaxPageSize < c.Discovery.DefaultPageSize {
		return fmt.Errorf("DISCOVERY_MAX_PAGE_SIZE must be at least DISCOVERY_DEFAULT_PAGE_SIZE")
	}
	if c.Discovery.FacilitySearchLimit <= 0 || c.Discovery.PractitionerSearchLimit <= 0 {
		return fmt.Errorf("search limits must be positive")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// fileDefaults resolves defaults from the optional config file.
type fileDefaults struct {
	k *koanf.Koanf
}

func (d fileDefaults) str(key, defaultValue string) string {
	if d.k.Exists(key) {
		return d.k.String(key)
	}
	return defaultValue
}

func (d fileDefaults) int(key string, defaultValue int) int {
	if d.k.Exists(key) {
		return d.k.Int(key)
	}
	return defaultValue
}

func (d fileDefaults) bool(key string, defaultValue bool) bool {
	if d.k.Exists(key) {
		return d.k.Bool(key)
	}
	return defaultValue
}

func (d fileDefaults) float(key string, defaultValue float64) float64 {
	if d.k.Exists(key) {
		return d.k.Float64(key)
	}
	return defaultValue
}

func (d fileDefaults) duration(key string, defaultValue time.Duration) time.Duration {
	if d.k.Exists(key) {
		return d.k.Duration(key)
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
