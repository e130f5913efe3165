package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is built once at process start and passed down by pointer.
// Nothing below cmd/ reads environment variables directly.
type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type AppConfig struct {
	Env         string         `yaml:"env"`
	Version     string         `yaml:"version"`
	Timezone    string         `yaml:"timezone"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Location    *time.Location `yaml:"-"`
}

type HTTPConfig struct {
	Port           string        `yaml:"port"`
	APIPrefix      string        `yaml:"api_prefix"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxRetries      int           `yaml:"max_retries"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	StatsTTL   time.Duration `yaml:"stats_ttl"`
	MaxRetries int           `yaml:"max_retries"`
}

type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	OutboxEnabled bool          `yaml:"outbox_enabled"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	BatchSize     int           `yaml:"batch_size"`
	MaxRetries    int           `yaml:"max_retries"`
}

// Default returns the configuration used when neither a file nor the
// environment override a value.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:      "development",
			Version:  "1.0.0",
			Timezone: "UTC",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		HTTP: HTTPConfig{
			Port:           "8000",
			APIPrefix:      "/api/v1",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			IdempotencyTTL: 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			MaxRetries:      5,
		},
		Redis: RedisConfig{
			StatsTTL:   30 * time.Second,
			MaxRetries: 5,
		},
		Kafka: KafkaConfig{
			PollInterval: 3 * time.Second,
			BatchSize:    50,
			MaxRetries:   5,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("APP_ENV", &c.App.Env)
	e.str("APP_VERSION", &c.App.Version)
	e.str("APP_TIMEZONE", &c.App.Timezone)
	e.list("CORS_ORIGINS", &c.App.CORSOrigins)

	e.str("PORT", &c.HTTP.Port)
	e.str("API_PREFIX", &c.HTTP.APIPrefix)
	e.duration("HTTP_READ_TIMEOUT", &c.HTTP.ReadTimeout)
	e.duration("HTTP_WRITE_TIMEOUT", &c.HTTP.WriteTimeout)
	e.duration("HTTP_IDLE_TIMEOUT", &c.HTTP.IdleTimeout)
	e.float("RATE_LIMIT_RPS", &c.HTTP.RateLimitRPS)
	e.int("RATE_LIMIT_BURST", &c.HTTP.RateLimitBurst)
	e.duration("IDEMPOTENCY_TTL", &c.HTTP.IdempotencyTTL)

	e.str("DB_HOST", &c.Database.Host)
	e.int("DB_PORT", &c.Database.Port)
	e.str("DB_USER", &c.Database.User)
	e.str("DB_PASSWORD", &c.Database.Password)
	e.str("DB_NAME", &c.Database.Name)
	e.str("DB_SSLMODE", &c.Database.SSLMode)
	e.int("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	e.int("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	e.duration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	e.int("DB_MAX_RETRIES", &c.Database.MaxRetries)
	e.bool("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)

	e.str("REDIS_ADDR", &c.Redis.Addr)
	e.str("REDIS_PASSWORD", &c.Redis.Password)
	e.int("REDIS_DB", &c.Redis.DB)
	e.duration("REDIS_STATS_TTL", &c.Redis.StatsTTL)
	e.int("REDIS_MAX_RETRIES", &c.Redis.MaxRetries)

	e.list("KAFKA_BROKERS", &c.Kafka.Brokers)
	e.bool("KAFKA_OUTBOX_ENABLED", &c.Kafka.OutboxEnabled)
	e.duration("KAFKA_POLL_INTERVAL", &c.Kafka.PollInterval)
	e.int("KAFKA_BATCH_SIZE", &c.Kafka.BatchSize)
	e.int("KAFKA_MAX_RETRIES", &c.Kafka.MaxRetries)

	return e.err
}

func (c *Config) validateAndNormalize() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database host must be set (DB_HOST)")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("config: database name must be set (DB_NAME)")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxRetries < 1 {
		c.Database.MaxRetries = 1
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("config: http port must be set (PORT)")
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("config: app timezone %q: %w", c.App.Timezone, err)
	}
	c.App.Location = loc

	if c.Kafka.BatchSize <= 0 {
		c.Kafka.BatchSize = 50
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// DSN returns a gorm/pgx keyword connection string. The session time zone is
// pinned to UTC so calendar dates round-trip unchanged.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config: %s: %w", key, err)
	}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = f
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

// list accepts either a JSON array or a comma separated value.
func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if strings.HasPrefix(v, "[") {
		var items []string
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			e.fail(key, err)
			return
		}
		*dst = items
		return
	}

	parts := strings.Split(v, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	*dst = items
}
