package models

import "time"

// Bounds applied to every requested poll interval.
const (
	MinPollIntervalMs = 1000
	MaxPollIntervalMs = 24 * 60 * 60 * 1000 // one day
)

// ThresholdConfig holds the operator-tunable bounds and the poll cadence.
// SoilThreshold is expressed in remote-device ADC units.
type ThresholdConfig struct {
	TempDangerMin  float64 `json:"temp_danger_min" mapstructure:"temp_danger_min"`
	TempDangerMax  float64 `json:"temp_danger_max" mapstructure:"temp_danger_max"`
	TempWarnMin    float64 `json:"temp_warn_min" mapstructure:"temp_warn_min"`
	TempWarnMax    float64 `json:"temp_warn_max" mapstructure:"temp_warn_max"`
	HumidityMin    float64 `json:"humidity_min" mapstructure:"humidity_min"`
	HumidityMax    float64 `json:"humidity_max" mapstructure:"humidity_max"`
	SoilThreshold  int     `json:"soil_threshold" mapstructure:"soil_threshold"`
	PollIntervalMs int     `json:"poll_interval_ms" mapstructure:"poll_interval_ms"`
}

// DefaultThresholdConfig mirrors the bounds the garden dashboard shipped with.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		TempDangerMin:  20,
		TempDangerMax:  35,
		TempWarnMin:    25,
		TempWarnMax:    30,
		HumidityMin:    40,
		HumidityMax:    80,
		SoilThreshold:  410,
		PollIntervalMs: 3000,
	}
}

// PollInterval returns the effective tick cadence within [MinPollIntervalMs, MaxPollIntervalMs].
func (c ThresholdConfig) PollInterval() time.Duration {
	ms := min(max(c.PollIntervalMs, MinPollIntervalMs), MaxPollIntervalMs)
	return time.Duration(ms) * time.Millisecond
}
