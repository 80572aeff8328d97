package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Log      LogConfig
	Authz    AuthzConfig
	Catalog  CatalogConfig
}

type AppConfig struct {
	Env     string
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // mysql or postgres
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// AuthzConfig lists the role names granting the manage capability
type AuthzConfig struct {
	ManageRoles []string
}

type CatalogConfig struct {
	CatchAllCode string
	SeedOnStart  bool
}

// Load loads configuration from config.toml and environment variables.
// Environment variables use the SPONSOR_ prefix, e.g. SPONSOR_DATABASE_HOST.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SPONSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			GinMode: v.GetString("app.gin_mode"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("session.secret"),
			CookieName: v.GetString("session.cookie_name"),
			MaxAge:     v.GetDuration("session.max_age"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Authz: AuthzConfig{
			ManageRoles: v.GetStringSlice("authz.manage_roles"),
		},
		Catalog: CatalogConfig{
			CatchAllCode: v.GetString("catalog.catch_all_code"),
			SeedOnStart:  v.GetBool("catalog.seed_on_start"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.gin_mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "sponsor")
	v.SetDefault("database.password", "sponsor")
	v.SetDefault("database.name", "sponsorship")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")

	v.SetDefault("session.secret", "default-secret-key-change-me")
	v.SetDefault("session.cookie_name", "backoffice_session")
	v.SetDefault("session.max_age", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("authz.manage_roles", []string{
		"correspondant",
		"back_office_fae",
		"responsable_fae",
		"administrateur",
		"membre",
	})

	v.SetDefault("catalog.catch_all_code", "autre")
	v.SetDefault("catalog.seed_on_start", true)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Catalog.CatchAllCode == "" {
		return fmt.Errorf("catalog.catch_all_code must not be empty")
	}
	if c.App.Env == "production" && c.Session.Secret == "default-secret-key-change-me" {
		return fmt.Errorf("session.secret must be set in production")
	}
	return nil
}

// IsProduction reports whether the application runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
