package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	State    StateConfig    `mapstructure:"state"`
	PokeAPI  PokeAPIConfig  `mapstructure:"pokeapi"`
	Session  SessionConfig  `mapstructure:"session"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StateConfig struct {
	Backend   string `mapstructure:"backend"` // "memory" | "redis" | "postgres"
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PokeAPIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 0 disables the lookup cache
	Delay    time.Duration `mapstructure:"delay"`     // artificial latency before each lookup
}

type SessionConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	TTL        time.Duration `mapstructure:"ttl"`

	// How often instances of expired sessions are unmounted.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 40*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 10*time.Second)

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.db", "statehub")
	v.SetDefault("database.postgres.user", "statehub")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("database.postgres.auto_migrate", true)

	v.SetDefault("database.redis.host", "localhost")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("state.backend", "memory")
	v.SetDefault("state.key_prefix", "statehub")

	v.SetDefault("pokeapi.base_url", "https://graphql-pokemon2.vercel.app")
	v.SetDefault("pokeapi.timeout", 10*time.Second)
	v.SetDefault("pokeapi.cache_ttl", 10*time.Minute)
	v.SetDefault("pokeapi.delay", 1500*time.Millisecond)

	v.SetDefault("session.signing_key", "")
	v.SetDefault("session.issuer", "statehub")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads config.yaml, overlays environment variables, and returns Config.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_REDIS_HOST -> database.redis.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration produced by an empty config file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

var (
	ErrUnknownBackend     = errors.New("unknown state backend")
	ErrMissingSigningKey  = errors.New("session.signing_key is required")
	ErrMissingPokeAPIBase = errors.New("pokeapi.base_url is required")
	ErrInvalidSweep       = errors.New("session.sweep_interval must be positive")
)

func (c *Config) Validate() error {
	switch c.State.Backend {
	case "memory", "redis", "postgres":
	default:
		return ErrUnknownBackend
	}
	if c.Session.SigningKey == "" {
		return ErrMissingSigningKey
	}
	if c.PokeAPI.BaseURL == "" {
		return ErrMissingPokeAPIBase
	}
	if c.Session.SweepInterval <= 0 {
		return ErrInvalidSweep
	}
	return nil
}
