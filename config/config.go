package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	MercadoPago MercadoPagoConfig `mapstructure:"mercadopago"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Email       EmailConfig       `mapstructure:"email"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig logging
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig MySQL connection. DSN wins over the individual fields when set.
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig token signing
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// MercadoPagoConfig payment gateway
type MercadoPagoConfig struct {
	AccessToken     string        `mapstructure:"access_token"`
	BaseURL         string        `mapstructure:"base_url"`
	PlanPrice       float64       `mapstructure:"plan_price"`
	Currency        string        `mapstructure:"currency"`
	SuccessURL      string        `mapstructure:"success_url"`
	FailureURL      string        `mapstructure:"failure_url"`
	PendingURL      string        `mapstructure:"pending_url"`
	NotificationURL string        `mapstructure:"notification_url"`
	TimeoutSeconds  int           `mapstructure:"timeout_seconds"`
	RateLimit       int           `mapstructure:"rate_limit"`
	Timeout         time.Duration `mapstructure:"-"`
}

// QueueConfig AMQP queue used to process gateway notifications asynchronously
type QueueConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// EmailConfig SMTP
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// RateLimitConfig per-IP limit on the auth endpoints
type RateLimitConfig struct {
	LoginAttempts      int `mapstructure:"login_attempts"`
	LoginWindowSeconds int `mapstructure:"login_window_seconds"`
}

// LoginWindow window of the auth rate limiter
func (r RateLimitConfig) LoginWindow() time.Duration {
	return time.Duration(r.LoginWindowSeconds) * time.Second
}

var (
	// GlobalConfig set by LoadConfig; only SafeErrorMessage reads it
	GlobalConfig *Config
)

// legacyEnv variable names used by the previous deployment, still honoured
var legacyEnv = map[string]string{
	"server.port":                  "PORT",
	"server.mode":                  "GIN_MODE",
	"database.dsn":                 "DATABASE_DSN",
	"jwt.secret":                   "JWT_SECRET",
	"mercadopago.access_token":     "MP_ACCESS_TOKEN",
	"mercadopago.plan_price":       "MP_PLAN_PRO_PRICE",
	"mercadopago.success_url":      "MP_SUCCESS_URL",
	"mercadopago.failure_url":      "MP_FAILURE_URL",
	"mercadopago.pending_url":      "MP_PENDING_URL",
	"mercadopago.notification_url": "MP_NOTIFICATION_URL",
	"queue.url":                    "AMQP_URL",
}

// LoadConfig loads configuration.
// Priority: environment > external config file > embedded defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("could not read config file")
		} else {
			log.Info().Str("path", configPath).Msg("merged config file")
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/baluarte")
		externalViper.AddConfigPath("$HOME/.baluarte")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Warn().Err(err).Msg("could not merge external config")
			} else {
				log.Info().Str("path", externalViper.ConfigFileUsed()).Msg("merged config file")
			}
		}
	}

	v.SetEnvPrefix("BALUARTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "BALUARTE_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	GlobalConfig = &cfg

	return &cfg, nil
}

// normalize fills derived fields and defaults that cannot live in YAML
func (c *Config) normalize() {
	if c.Server.Port != "" && !strings.HasPrefix(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 720
	}
	c.JWT.ExpireTime = time.Duration(c.JWT.ExpireHours) * time.Hour

	if c.MercadoPago.TimeoutSeconds <= 0 {
		c.MercadoPago.TimeoutSeconds = 5
	}
	c.MercadoPago.Timeout = time.Duration(c.MercadoPago.TimeoutSeconds) * time.Second
	if c.MercadoPago.Currency == "" {
		c.MercadoPago.Currency = "ARS"
	}
	if c.RateLimit.LoginAttempts <= 0 {
		c.RateLimit.LoginAttempts = 10
	}
	if c.RateLimit.LoginWindowSeconds <= 0 {
		c.RateLimit.LoginWindowSeconds = 60
	}
}

// MySQLDSN connection string for gorm's MySQL driver
func (d DatabaseConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		d.Charset,
	)
}

// IsRelease reports whether the server runs in gin release mode
func (c *Config) IsRelease() bool {
	return c != nil && c.Server.Mode == "release"
}

// PrintConfig logs the effective configuration without secrets
func PrintConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	log.Info().
		Str("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s@%s:%s/%s", cfg.Database.Username, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Bool("dsn_override", cfg.Database.DSN != "").
		Bool("mercadopago_configured", cfg.MercadoPago.AccessToken != "").
		Float64("plan_price", cfg.MercadoPago.PlanPrice).
		Bool("queue", cfg.Queue.Enabled).
		Bool("email", cfg.Email.Enabled).
		Msg("configuration loaded")
}
