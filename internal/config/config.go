package config

import (
	"fmt"
	"strings"

	"github.com/spedigo-next/internal/logger"

	"github.com/spf13/viper"
)

// Config is the application configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Shopify  ShopifyConfig  `mapstructure:"shopify"`
	Carrier  CarrierConfig  `mapstructure:"carrier"`
	Senders  SendersConfig  `mapstructure:"senders"`
	Shipping ShippingConfig `mapstructure:"shipping"`
	Customs  CustomsConfig  `mapstructure:"customs"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Email    EmailConfig    `mapstructure:"email"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig log output settings.
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converts to logger options.
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig connection pool settings.
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig database settings.
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig redis settings; used for webhook dedupe claims.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig asynq queue settings.
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig cross-origin settings for the ops API.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// JWTConfig operator token settings.
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ShopifyConfig Shopify Admin API access.
type ShopifyConfig struct {
	ShopName      string `mapstructure:"shop_name"`
	APIKey        string `mapstructure:"api_key"`
	AccessToken   string `mapstructure:"access_token"`
	APIVersion    string `mapstructure:"api_version"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// CarrierConfig carrier aggregator access. Exactly one active API key per
// account type.
type CarrierConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	DDPAPIKey    string `mapstructure:"ddp_api_key"`
	DDUAPIKey    string `mapstructure:"ddu_api_key"`
	WebhookToken string `mapstructure:"webhook_token"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
}

// SenderProfileConfig one warehouse/sender address, keyed by a short code.
type SenderProfileConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
	Country  string `mapstructure:"country"`
	Province string `mapstructure:"province"`
	City     string `mapstructure:"city"`
	Postcode string `mapstructure:"postcode"`
	Street   string `mapstructure:"street"`
}

// SendersConfig sender profile registry.
type SendersConfig struct {
	Profiles map[string]SenderProfileConfig `mapstructure:"profiles"`
}

// ShippingConfig package defaults applied when the order carries no data.
type ShippingConfig struct {
	DefaultWeightKG     float64 `mapstructure:"default_weight_kg"`
	DefaultWidthCM      int     `mapstructure:"default_width_cm"`
	DefaultHeightCM     int     `mapstructure:"default_height_cm"`
	DefaultDepthCM      int     `mapstructure:"default_depth_cm"`
	DeclaredAmount      string  `mapstructure:"declared_amount"`
	FallbackDescription string  `mapstructure:"fallback_description"`
}

// CustomsConfig customs document generation settings. Orders created before
// LegacyBefore (RFC 3339) predate the customs-data rollout and fail silently
// when product customs fields are missing.
type CustomsConfig struct {
	LegacyBefore string `mapstructure:"legacy_before"`
}

// StorageConfig long-term document storage (S3).
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	KeyPrefix string `mapstructure:"key_prefix"`
	PublicURL string `mapstructure:"public_url"`
}

// EmailConfig SMTP settings for alert and notification mail.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// AlertsConfig operator alert routing.
type AlertsConfig struct {
	OperatorEmail string `mapstructure:"operator_email"`
}

// Load reads config.yml plus environment overrides.
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "spedigo.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/spedigo.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "sg")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("shopify.shop_name", "")
	viper.SetDefault("shopify.api_key", "")
	viper.SetDefault("shopify.access_token", "")
	viper.SetDefault("shopify.api_version", "2024-01")
	viper.SetDefault("shopify.webhook_secret", "")
	viper.SetDefault("carrier.base_url", "https://www.spedirepro.it/api/v2")
	viper.SetDefault("carrier.ddp_api_key", "")
	viper.SetDefault("carrier.ddu_api_key", "")
	viper.SetDefault("carrier.webhook_token", "")
	viper.SetDefault("carrier.timeout_ms", 30000)
	viper.SetDefault("senders.profiles", map[string]map[string]string{
		"MI": {
			"name":     "Magazzino Milano",
			"email":    "magazzino-mi@example.com",
			"phone":    "+390200000000",
			"country":  "IT",
			"province": "MI",
			"city":     "Milano",
			"postcode": "20121",
			"street":   "Via Monte Napoleone 1",
		},
		"RM": {
			"name":     "Magazzino Roma",
			"email":    "magazzino-rm@example.com",
			"phone":    "+390600000000",
			"country":  "IT",
			"province": "RM",
			"city":     "Roma",
			"postcode": "00187",
			"street":   "Via del Corso 10",
		},
	})
	viper.SetDefault("shipping.default_weight_kg", 1.0)
	viper.SetDefault("shipping.default_width_cm", 30)
	viper.SetDefault("shipping.default_height_cm", 20)
	viper.SetDefault("shipping.default_depth_cm", 10)
	viper.SetDefault("shipping.declared_amount", "25.00")
	viper.SetDefault("shipping.fallback_description", "Merchandise")
	viper.SetDefault("customs.legacy_before", "")
	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.bucket", "")
	viper.SetDefault("storage.region", "eu-south-1")
	viper.SetDefault("storage.key_prefix", "customs")
	viper.SetDefault("storage.public_url", "")
	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.host", "")
	viper.SetDefault("email.port", 587)
	viper.SetDefault("email.username", "")
	viper.SetDefault("email.password", "")
	viper.SetDefault("email.from", "")
	viper.SetDefault("email.from_name", "")
	viper.SetDefault("email.use_tls", true)
	viper.SetDefault("email.use_ssl", false)
	viper.SetDefault("alerts.operator_email", "")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}

	return &cfg
}
