package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// RedisConfig also names the task stream shared by the API (producer) and
// the worker (consumer group).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
	MaxLen   int64
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

// StorageConfig points at the S3-compatible bucket approval events are
// archived to. An empty endpoint disables archiving.
type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	BucketAudit string
	UseSSL      bool
	Region      string
}

type SecurityConfig struct {
	JWTSecret       string
	SessionTTL      time.Duration
	MaxSessions     int
	VerificationTTL time.Duration
	CookieName      string
	CookieSecure    bool
}

type StoreConfig struct {
	Driver string
}

type JobsConfig struct {
	Enabled    bool
	ReaperSpec string
}

type MailConfig struct {
	Enabled bool
	From    string
	BaseURL string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Queues           QueueConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Store            StoreConfig
	Jobs             JobsConfig
	Mail             MailConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("VENDORHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres store driver")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Security.JWTSecret == "" {
		if c.Environment == "production" {
			return errors.New("security.jwtsecret is required in production")
		}
		c.Security.JWTSecret = "development-only-secret"
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("tls.enabled", false)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "vendorhub:tasks")
	v.SetDefault("redis.group", "vendorhub-workers")
	v.SetDefault("redis.consumer", "worker-1")
	v.SetDefault("redis.maxlen", 10000)

	v.SetDefault("queues.claiminterval", "30s")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketaudit", "vendorhub-audit")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.sessionttl", "168h") // 7 days
	v.SetDefault("security.maxsessions", 10)
	v.SetDefault("security.verificationttl", "24h")
	v.SetDefault("security.cookiename", "session")
	v.SetDefault("security.cookiesecure", false)

	v.SetDefault("store.driver", StoreDriverPostgres)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.reaperspec", "0 */15 * * * *")

	v.SetDefault("mail.enabled", true)
	v.SetDefault("mail.from", "no-reply@vendorhub.local")
	v.SetDefault("mail.baseurl", "http://localhost:8080")

	v.SetDefault("logging.level", "info")

	v.SetDefault("allowcorsorigins", []string{})
}
