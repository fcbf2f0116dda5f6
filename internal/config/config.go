// Package config loads service settings from configs/config.yml, a local .env and
// SMARTGARDEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
)

const envPrefix = "SMARTGARDEN"

type Config struct {
	Port       string                 `mapstructure:"port"`
	LogLevel   string                 `mapstructure:"log_level"`
	DB         DB                     `mapstructure:"db"`
	Device     Device                 `mapstructure:"device"`
	Thresholds models.ThresholdConfig `mapstructure:"thresholds"`
	Auth       Auth                   `mapstructure:"auth"`
	Notices    Notices                `mapstructure:"notices"`
	Metrics    metrics.Config         `mapstructure:"metrics"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

// Device describes the remote garden controller.
type Device struct {
	Endpoint string        `mapstructure:"endpoint"` // connect on start when set
	Timeout  time.Duration `mapstructure:"timeout"`
	ADCMax   int           `mapstructure:"adc_max"`
}

type Auth struct {
	SigningKey       string        `mapstructure:"signing_key"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	AllowSignUp      bool          `mapstructure:"allow_sign_up"`
	OperatorUsername string        `mapstructure:"operator_username"`
	OperatorPassword string        `mapstructure:"operator_password"`
}

type Notices struct {
	Sweep string        `mapstructure:"sweep"` // cron spec
	TTL   time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	th := models.DefaultThresholdConfig()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", ":memory:")
	v.SetDefault("device.endpoint", "")
	v.SetDefault("device.timeout", "5s")
	v.SetDefault("device.adc_max", models.DefaultDeviceADCMax)
	v.SetDefault("thresholds.temp_danger_min", th.TempDangerMin)
	v.SetDefault("thresholds.temp_danger_max", th.TempDangerMax)
	v.SetDefault("thresholds.temp_warn_min", th.TempWarnMin)
	v.SetDefault("thresholds.temp_warn_max", th.TempWarnMax)
	v.SetDefault("thresholds.humidity_min", th.HumidityMin)
	v.SetDefault("thresholds.humidity_max", th.HumidityMax)
	v.SetDefault("thresholds.soil_threshold", th.SoilThreshold)
	v.SetDefault("thresholds.poll_interval_ms", th.PollIntervalMs)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.allow_sign_up", false)
	v.SetDefault("auth.operator_username", "")
	v.SetDefault("auth.operator_password", "")
	v.SetDefault("notices.sweep", "@every 1m")
	v.SetDefault("notices.ttl", "10m")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:8125")
	v.SetDefault("metrics.namespace", "smartgarden.")
	v.SetDefault("metrics.tags", []string{})
}

// Load reads .env (if present), then config.yml from the given directories
// (default "configs"), then environment overrides. A missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Device.ADCMax <= 0 {
		cfg.Device.ADCMax = models.DefaultDeviceADCMax
	}
	return cfg, nil
}
