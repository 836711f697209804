package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds panel configuration. Values come from an optional YAML file
// (AURA_CONFIG) with environment variables taking precedence. The gas
// threshold must match the firmware-side threshold on the rover; drift
// between the two causes false readings the panel cannot detect.
type Config struct {
	HTTPAddr     string        `yaml:"http_addr"`
	DatabaseURL  string        `yaml:"database_url"`
	RoverBaseURL string        `yaml:"rover_base_url"`
	GasThreshold float64       `yaml:"gas_threshold"`
	PollInterval time.Duration `yaml:"poll_interval"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`

	JWTSecret string `yaml:"jwt_secret"`

	NotifyTemplate       string        `yaml:"notify_template"`
	DesktopNotifications bool          `yaml:"desktop_notifications"`
	SirenPulseOn         time.Duration `yaml:"siren_pulse_on"`
	SirenPulseOff        time.Duration `yaml:"siren_pulse_off"`
}

// Load reads configuration from the optional YAML file and the environment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:             ":8080",
		GasThreshold:         1500,
		PollInterval:         2 * time.Second,
		DesktopNotifications: true,
		SirenPulseOn:         300 * time.Millisecond,
		SirenPulseOff:        200 * time.Millisecond,
	}

	if path := os.Getenv("AURA_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RoverBaseURL = getenvDefault("ROVER_BASE_URL", cfg.RoverBaseURL)
	cfg.GasThreshold = getenvFloatDefault("GAS_THRESHOLD", cfg.GasThreshold)
	cfg.PollInterval = getenvDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.TelegramBotToken = getenvDefault("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	cfg.TelegramChatID = getenvDefault("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", cfg.JWTSecret)
	cfg.NotifyTemplate = getenvDefault("NOTIFY_TEMPLATE", cfg.NotifyTemplate)
	cfg.SirenPulseOn = getenvDuration("SIREN_PULSE_ON", cfg.SirenPulseOn)
	cfg.SirenPulseOff = getenvDuration("SIREN_PULSE_OFF", cfg.SirenPulseOff)
	if value := os.Getenv("DESKTOP_NOTIFICATIONS"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			cfg.DesktopNotifications = parsed
		}
	}

	if cfg.RoverBaseURL == "" {
		return cfg, errors.New("config: ROVER_BASE_URL is required")
	}
	if cfg.PollInterval <= 0 {
		return cfg, errors.New("config: poll interval must be positive")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
