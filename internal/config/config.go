package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Presence  PresenceConfig  `mapstructure:"presence"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port"                 validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level"            validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection string or a sqlite file path / DSN.
	URL                    string `mapstructure:"url"                       validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// RateLimitConfig controls the per-principal request limiter.
type RateLimitConfig struct {
	Enabled                bool    `mapstructure:"enabled"`
	RequestsPerSecond      float64 `mapstructure:"requests_per_second"      validate:"gt=0"`
	Burst                  int     `mapstructure:"burst"                    validate:"gt=0"`
	CleanupIntervalSeconds int     `mapstructure:"cleanup_interval_seconds" validate:"gt=0"`
}

// PresenceConfig controls online-user tracking.
// An empty RedisURL keeps presence in process memory.
type PresenceConfig struct {
	RedisURL   string `mapstructure:"redis_url"   validate:"omitempty,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gt=0"`
}
