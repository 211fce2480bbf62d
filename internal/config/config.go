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
	AccessSecret      string
	AdminEmail        string
	AdminPasswordHash string
}

// WebhookConfig governs the detection ingest trust boundary.
type WebhookConfig struct {
	APIKey         string
	IntensityFloor int
	DedupWindow    time.Duration
}

// FineConfig is the tiered fine schedule keyed on beam intensity.
type FineConfig struct {
	BaseAmount    float64
	MidThreshold  int
	MidAmount     float64
	HighThreshold int
	HighAmount    float64
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Webhook     WebhookConfig
	Fines       FineConfig
	Razorpay    RazorpayConfig
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
			AccessSecret:      v.GetString("JWT_ACCESS_SECRET"),
			AdminEmail:        v.GetString("ADMIN_EMAIL"),
			AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		Webhook: WebhookConfig{
			APIKey:         v.GetString("WEBHOOK_API_KEY"),
			IntensityFloor: v.GetInt("BEAM_INTENSITY_FLOOR"),
			DedupWindow:    v.GetDuration("DETECTION_DEDUP_WINDOW"),
		},
		Fines: FineConfig{
			BaseAmount:    v.GetFloat64("FINE_BASE_AMOUNT"),
			MidThreshold:  v.GetInt("FINE_MID_THRESHOLD"),
			MidAmount:     v.GetFloat64("FINE_MID_AMOUNT"),
			HighThreshold: v.GetInt("FINE_HIGH_THRESHOLD"),
			HighAmount:    v.GetFloat64("FINE_HIGH_AMOUNT"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
			BaseURL:   v.GetString("RAZORPAY_BASE_URL"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Webhook.IntensityFloor == 0 {
		cfg.Webhook.IntensityFloor = 50
	}
	if cfg.Webhook.DedupWindow == 0 {
		cfg.Webhook.DedupWindow = 60 * time.Second
	}
	if cfg.Fines.BaseAmount == 0 {
		cfg.Fines.BaseAmount = 1000
	}
	if cfg.Fines.MidThreshold == 0 {
		cfg.Fines.MidThreshold = 60
	}
	if cfg.Fines.MidAmount == 0 {
		cfg.Fines.MidAmount = 1500
	}
	if cfg.Fines.HighThreshold == 0 {
		cfg.Fines.HighThreshold = 80
	}
	if cfg.Fines.HighAmount == 0 {
		cfg.Fines.HighAmount = 2000
	}
	if cfg.Razorpay.BaseURL == "" {
		cfg.Razorpay.BaseURL = "https://api.razorpay.com/v1"
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Webhook.APIKey == "" {
		return fmt.Errorf("WEBHOOK_API_KEY is required")
	}
	if cfg.Razorpay.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_SECRET is required")
	}
	return nil
}
