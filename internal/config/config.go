package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

// SchedulingConfig carries the planning rules that are tunable per
// deployment rather than fixed in the rule engine.
type SchedulingConfig struct {
	// Timezone anchors "today" and the same-day cutoff. Deliveries are
	// planned against this zone, not the server's.
	Timezone string
	// SameDayCutoffHour is the local hour after which same-day documents
	// are refused.
	SameDayCutoffHour int
	// DefaultVehicleDailyLimit seeds new vehicles' capacity.
	DefaultVehicleDailyLimit int
	// UserDailyCreateLimit caps how many documents a non-manager may open
	// per delivery date.
	UserDailyCreateLimit int
}

type SMSConfig struct {
	Enabled bool
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Scheduling  SchedulingConfig
	SMS         SMSConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Scheduling: SchedulingConfig{
			Timezone:                 v.GetString("SCHEDULE_TIMEZONE"),
			SameDayCutoffHour:        v.GetInt("SCHEDULE_CUTOFF_HOUR"),
			DefaultVehicleDailyLimit: v.GetInt("VEHICLE_DAILY_LIMIT"),
			UserDailyCreateLimit:     v.GetInt("USER_DAILY_CREATE_LIMIT"),
		},
		SMS: SMSConfig{
			Enabled: v.GetBool("SMS_ENABLED"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Scheduling.Timezone == "" {
		cfg.Scheduling.Timezone = "Europe/Istanbul"
	}
	if cfg.Scheduling.SameDayCutoffHour == 0 {
		cfg.Scheduling.SameDayCutoffHour = 12
	}
	if cfg.Scheduling.DefaultVehicleDailyLimit <= 0 {
		cfg.Scheduling.DefaultVehicleDailyLimit = 7
	}
	if cfg.Scheduling.UserDailyCreateLimit <= 0 {
		cfg.Scheduling.UserDailyCreateLimit = 7
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Scheduling.SameDayCutoffHour < 0 || cfg.Scheduling.SameDayCutoffHour > 23 {
		return fmt.Errorf("SCHEDULE_CUTOFF_HOUR must be within 0..23")
	}
	return nil
}
