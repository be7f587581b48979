package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"agroai-backend/internal/db"

	"github.com/spf13/viper"
)

const (
	ChatKeyword = "keyword"
	ChatOpenAI  = "openai"
	ChatHunyuan = "hunyuan"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Market   MarketConfig   `mapstructure:"market"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type MarketConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RefreshHour  int           `mapstructure:"refresh_hour"`
	TrackedCrops []string      `mapstructure:"tracked_crops"`
}

type ChatConfig struct {
	Provider  string `mapstructure:"provider"`
	Token     string `mapstructure:"token"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	RateLimit int    `mapstructure:"rate_limit"` // requests per minute per ip
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// legacyEnv older variable names still honoured
var legacyEnv = map[string]string{
	"server.port":     "PORT",
	"weather.api_key": "OPENWEATHER_API_KEY",
	"market.api_key":  "DATA_GOV_IN_KEY",
	"database.dsn":    "MYSQL_DSN",
	"chat.token":      "HUNYUAN_TOKEN",
	"chat.secret_id":  "TENCENTCLOUD_SECRETID",
	"chat.secret_key": "TENCENTCLOUD_SECRETKEY",
}

// LoadConfig reads path if given, otherwise ./config.yaml when present.
// Environment variables override file values, e.g. SERVER_PORT for server.port.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 4200)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.dsn", "")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "")
	v.SetDefault("weather.timeout", 5*time.Second)
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.base_url", "")
	v.SetDefault("market.timeout", 10*time.Second)
	v.SetDefault("market.refresh_hour", 6)
	v.SetDefault("market.tracked_crops", []string{"Rice", "Wheat", "Tomato"})
	v.SetDefault("chat.provider", ChatKeyword)
	v.SetDefault("chat.token", "")
	v.SetDefault("chat.model", "")
	v.SetDefault("chat.base_url", "")
	v.SetDefault("chat.secret_id", "")
	v.SetDefault("chat.secret_key", "")
	v.SetDefault("chat.region", "")
	v.SetDefault("chat.rate_limit", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	// no default, an unset driver is derived from the dsn below
	if err := v.BindEnv("database.driver"); err != nil {
		return nil, fmt.Errorf("bind env DATABASE_DRIVER: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// a bare MYSQL_DSN implies the mysql driver
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = db.DriverMemory
		if cfg.Database.DSN != "" {
			cfg.Database.Driver = db.DriverMySQL
		}
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if err := c.DB().Validate(); err != nil {
		return err
	}
	switch c.Chat.Provider {
	case ChatKeyword:
	case ChatOpenAI:
		if c.Chat.Token == "" {
			return errors.New("chat.token required for the openai provider")
		}
	case ChatHunyuan:
		if c.Chat.SecretID == "" || c.Chat.SecretKey == "" {
			return errors.New("chat.secret_id and chat.secret_key required for the hunyuan provider")
		}
	default:
		return fmt.Errorf("unknown chat.provider %q", c.Chat.Provider)
	}
	if c.Market.RefreshHour < 0 || c.Market.RefreshHour > 23 {
		return fmt.Errorf("invalid market.refresh_hour %d", c.Market.RefreshHour)
	}
	return nil
}

func (c *Config) DB() db.Config {
	return db.Config{Driver: c.Database.Driver, DSN: c.Database.DSN}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
