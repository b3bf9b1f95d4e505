package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leafsii/kvkeywords/pkg/facade"
	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env      string `mapstructure:"KVK_ENV"`
	LogLevel string `mapstructure:"KVK_LOG_LEVEL"`
	HTTPAddr string `mapstructure:"KVK_HTTP_ADDR"`

	Store    StoreConfig    `mapstructure:",squash"`
	Sessions SessionConfig  `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

// StoreConfig holds the default connection parameters. Keyword callers
// still pass their own host and port to "Connect To Redis"; the backend and
// dial timeout apply to every connection.
type StoreConfig struct {
	Backend     string        `mapstructure:"KVK_BACKEND"`
	Host        string        `mapstructure:"KVK_REDIS_HOST"`
	Port        int           `mapstructure:"KVK_REDIS_PORT"`
	DB          int           `mapstructure:"KVK_REDIS_DB"`
	Password    string        `mapstructure:"KVK_REDIS_PASSWORD"`
	DialTimeout time.Duration `mapstructure:"KVK_DIAL_TIMEOUT"`
	// JanitorInterval applies to the memory backend only; 0 disables the sweep
	JanitorInterval time.Duration `mapstructure:"KVK_MEMORY_JANITOR_INTERVAL"`
}

type SessionConfig struct {
	MaxSessions    int           `mapstructure:"KVK_MAX_SESSIONS"`
	IdleTimeout    time.Duration `mapstructure:"KVK_SESSION_IDLE_TIMEOUT"`
	RequestTimeout time.Duration `mapstructure:"KVK_REQUEST_TIMEOUT"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"KVK_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"KVK_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("KVK_ENV", "dev")
	v.SetDefault("KVK_LOG_LEVEL", "")
	v.SetDefault("KVK_HTTP_ADDR", ":8080")
	v.SetDefault("KVK_BACKEND", string(kv.BackendRedis))
	v.SetDefault("KVK_REDIS_HOST", "127.0.0.1")
	v.SetDefault("KVK_REDIS_PORT", kv.DefaultPort)
	v.SetDefault("KVK_REDIS_DB", 0)
	v.SetDefault("KVK_REDIS_PASSWORD", "")
	v.SetDefault("KVK_DIAL_TIMEOUT", "5s")
	v.SetDefault("KVK_MEMORY_JANITOR_INTERVAL", "1m")
	v.SetDefault("KVK_MAX_SESSIONS", 64)
	v.SetDefault("KVK_SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("KVK_REQUEST_TIMEOUT", "15s")
	v.SetDefault("KVK_RATE_LIMIT_RPM", 600)
	v.SetDefault("KVK_CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

// Load reads configuration from the environment (and .env files)
func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Comma-separated lists
	if origins := v.GetString("KVK_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("KVK_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch kv.Backend(c.Store.Backend) {
	case kv.BackendRedis, kv.BackendMemory:
	default:
		return fmt.Errorf("invalid KVK_BACKEND %q (must be redis or memory)", c.Store.Backend)
	}
	if c.Store.Port < 1 || c.Store.Port > 65535 {
		return fmt.Errorf("KVK_REDIS_PORT %d out of range", c.Store.Port)
	}
	if c.Store.DB < 0 {
		return fmt.Errorf("KVK_REDIS_DB must not be negative")
	}
	if c.Store.DialTimeout <= 0 {
		return fmt.Errorf("KVK_DIAL_TIMEOUT must be positive")
	}
	if c.Store.JanitorInterval < 0 {
		return fmt.Errorf("KVK_MEMORY_JANITOR_INTERVAL must not be negative")
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("KVK_MAX_SESSIONS must be positive")
	}
	if c.Sessions.IdleTimeout <= 0 {
		return fmt.Errorf("KVK_SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Sessions.RequestTimeout <= 0 {
		return fmt.Errorf("KVK_REQUEST_TIMEOUT must be positive")
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("KVK_RATE_LIMIT_RPM must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// ConnectOptions returns the configured default connection
func (s StoreConfig) ConnectOptions() facade.ConnectOptions {
	return facade.ConnectOptions{
		Backend:         kv.Backend(s.Backend),
		Host:            s.Host,
		Port:            s.Port,
		Keyspace:        s.DB,
		Password:        s.Password,
		DialTimeout:     s.DialTimeout,
		JanitorInterval: s.JanitorInterval,
	}
}
