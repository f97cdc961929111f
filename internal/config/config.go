package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver selects the persistence backend: "postgres" for a remote
// database, "sqlite" for device-local storage.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"omitempty,gte=4,lte=31"`
}

// SRSConfig overrides scheduling algorithm parameters. Zero-valued fields
// keep the algorithm defaults.
type SRSConfig struct {
	MinEaseFactor          float64 `mapstructure:"min_ease_factor"          validate:"omitempty,gt=1"`
	MaxEaseFactor          float64 `mapstructure:"max_ease_factor"          validate:"omitempty,gt=1"`
	GraduationRepetitions  int     `mapstructure:"graduation_repetitions"   validate:"omitempty,gt=0"`
	GraduationIntervalDays int     `mapstructure:"graduation_interval_days" validate:"omitempty,gt=0"`
}

// SessionConfig bounds review sessions.
type SessionConfig struct {
	MaxCards              int `mapstructure:"max_cards"               validate:"omitempty,gt=0"`
	TargetDurationSeconds int `mapstructure:"target_duration_seconds" validate:"omitempty,gt=0"`
}

// Session defaults applied when the corresponding config values are unset.
const (
	DefaultSessionMaxCards              = 20
	DefaultSessionTargetDurationSeconds = 300
)
