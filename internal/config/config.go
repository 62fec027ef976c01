package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"marketplace/api/internal/security"
)

const envPrefix = "MARKETPLACE"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	JWTSecret                string
	JWTIssuer                string
	JWTAudience              string
	AccessTokenExpiryMinutes int
	RefreshTTL               time.Duration
	ResetTokenTTL            time.Duration
}

type CookieConfig struct {
	Domain string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type MailConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	From          string
	ResetURL      string
	SMTP          SMTPConfig
}

type CatalogConfig struct {
	FallbackOnUnavailable bool
}

type JobsConfig struct {
	ResetSweep string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Storage          StorageConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Cookies          CookieConfig
	Mail             MailConfig
	Catalog          CatalogConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// AccessTTL is the access token lifetime derived from the configured minutes.
func (c *AppConfig) AccessTTL() time.Duration {
	return time.Duration(c.Security.AccessTokenExpiryMinutes) * time.Minute
}

func (c *AppConfig) TokenConfig() security.TokenConfig {
	return security.TokenConfig{
		Secret:    c.Security.JWTSecret,
		Issuer:    c.Security.JWTIssuer,
		Audience:  c.Security.JWTAudience,
		AccessTTL: c.AccessTTL(),
	}
}

// Validate reports every missing required key at once.
func (c *AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Security.JWTSecret) == "" {
		errs = append(errs, errors.New("security.jwtsecret is required"))
	}
	if strings.TrimSpace(c.Security.JWTIssuer) == "" {
		errs = append(errs, errors.New("security.jwtissuer is required"))
	}
	if strings.TrimSpace(c.Security.JWTAudience) == "" {
		errs = append(errs, errors.New("security.jwtaudience is required"))
	}
	if c.Security.AccessTokenExpiryMinutes <= 0 {
		errs = append(errs, errors.New("security.accesstokenexpiryminutes must be a positive number"))
	}
	if c.Security.RefreshTTL <= 0 {
		errs = append(errs, errors.New("security.refreshttl must be positive"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, then config.yaml, then MARKETPLACE_*
// environment variables. It does not validate; callers decide which keys
// their process needs.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
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

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Registered so AutomaticEnv can see them during Unmarshal.
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.jwtissuer", "")
	v.SetDefault("security.jwtaudience", "")
	v.SetDefault("security.accesstokenexpiryminutes", 0)
	v.SetDefault("security.refreshttl", "168h")
	v.SetDefault("security.resettokenttl", "1h")

	v.SetDefault("cookies.domain", "")

	v.SetDefault("mail.stream", "mail:outbox")
	v.SetDefault("mail.group", "mailers")
	v.SetDefault("mail.consumer", "worker-1")
	v.SetDefault("mail.claiminterval", "30s")
	v.SetDefault("mail.from", "no-reply@marketplace.local")
	v.SetDefault("mail.reseturl", "http://localhost:3000/reset-password")
	v.SetDefault("mail.smtp.host", "127.0.0.1")
	v.SetDefault("mail.smtp.port", 1025)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")

	v.SetDefault("catalog.fallbackonunavailable", false)

	v.SetDefault("jobs.resetsweep", "0 0 * * * *")

	v.SetDefault("allowcorsorigins", []string{})
}
