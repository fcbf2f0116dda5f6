package service

import (
	"context"
	"fmt"
	"math"

	"smartgarden/internal/apperr"
	"smartgarden/internal/device"
	"smartgarden/internal/logger"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
)

// kicker starts an acquisition early after a mode change.
type kicker interface {
	Kick()
}

type ConfigurationService struct {
	store      *Store
	configRepo repository.ConfigRepo
	events     repository.EventRepo
	notices    Notices
	acq        kicker
	log        *logger.Logger
}

func NewConfigurationService(store *Store, configRepo repository.ConfigRepo, events repository.EventRepo, notices Notices, acq kicker, log *logger.Logger) *ConfigurationService {
	return &ConfigurationService{
		store:      store,
		configRepo: configRepo,
		events:     events,
		notices:    notices,
		acq:        acq,
		log:        logger.OrNop(log),
	}
}

func (s *ConfigurationService) GetConfig(ctx context.Context) models.ThresholdConfig {
	return s.store.Config()
}

func (s *ConfigurationService) Status() models.ConnectionStatus {
	return s.store.Status()
}

// ApplyConfig validates cfg, clamps out-of-range values and makes it active.
// It returns the config actually applied and a description of each clamp.
func (s *ConfigurationService) ApplyConfig(ctx context.Context, cfg models.ThresholdConfig) (models.ThresholdConfig, []string, error) {
	const op = "apply config"

	if err := validateConfig(cfg); err != nil {
		return s.store.Config(), nil, apperr.Wrap(apperr.ValidationFailure, op, err)
	}
	applied, adjustments := clampConfig(cfg, s.store.DeviceADCMax())

	if s.configRepo != nil {
		if err := s.configRepo.Save(ctx, applied); err != nil {
			return s.store.Config(), nil, apperr.Wrap(apperr.Internal, op, err)
		}
	}
	s.store.setConfig(applied)

	s.log.Infow("config_applied", "poll_interval_ms", applied.PollIntervalMs, "adjustments", adjustments)
	recordEvent(ctx, s.events, s.log, models.EventConfigChange, "thresholds updated",
		map[string]any{"config": applied, "adjustments": adjustments})
	if len(adjustments) > 0 && s.notices != nil {
		msg := fmt.Sprintf("Some values were adjusted: %v", adjustments)
		if _, err := s.notices.RaiseNotice(ctx, models.NoticeConfigAdjusted, msg); err != nil {
			s.log.Warnw("notice_raise_failed", "err", err)
		}
	}
	return applied, adjustments, nil
}

// Connect switches from simulated to polling the device at rawURL.
func (s *ConfigurationService) Connect(ctx context.Context, rawURL string) (models.ConnectionStatus, error) {
	endpoint, err := device.NormalizeEndpoint(rawURL)
	if err != nil {
		return s.store.Status(), err
	}
	st, err := s.store.connect(endpoint)
	if err != nil {
		return st, err
	}

	s.log.Infow("mode_changed", "to", st.Mode, "endpoint", endpoint)
	recordEvent(ctx, s.events, s.log, models.EventModeChange, fmt.Sprintf("connecting to %s", endpoint),
		map[string]any{"from": models.ModeSimulated, "to": st.Mode, "endpoint": endpoint})
	s.kick()
	return st, nil
}

// Disconnect drops the endpoint and returns to the simulated stream.
func (s *ConfigurationService) Disconnect(ctx context.Context) (models.ConnectionStatus, error) {
	prev := s.store.Status()
	st, err := s.store.disconnect()
	if err != nil {
		return st, err
	}

	s.log.Infow("mode_changed", "from", prev.Mode, "to", st.Mode)
	recordEvent(ctx, s.events, s.log, models.EventModeChange, fmt.Sprintf("disconnected from %s", prev.Endpoint),
		map[string]any{"from": prev.Mode, "to": st.Mode, "endpoint": prev.Endpoint})
	s.kick()
	return st, nil
}

func (s *ConfigurationService) kick() {
	if s.acq != nil {
		s.acq.Kick()
	}
}

func validateConfig(c models.ThresholdConfig) error {
	for name, v := range map[string]float64{
		"temp_danger_min": c.TempDangerMin,
		"temp_danger_max": c.TempDangerMax,
		"temp_warn_min":   c.TempWarnMin,
		"temp_warn_max":   c.TempWarnMax,
		"humidity_min":    c.HumidityMin,
		"humidity_max":    c.HumidityMax,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if c.HumidityMin > c.HumidityMax {
		return fmt.Errorf("humidity_min %.1f exceeds humidity_max %.1f", c.HumidityMin, c.HumidityMax)
	}
	if !(c.TempDangerMin <= c.TempWarnMin && c.TempWarnMin <= c.TempWarnMax && c.TempWarnMax <= c.TempDangerMax) {
		return fmt.Errorf("temperature bands must nest: danger_min <= warn_min <= warn_max <= danger_max")
	}
	return nil
}

func clampConfig(c models.ThresholdConfig, adcMax int) (models.ThresholdConfig, []string) {
	var adj []string

	if c.PollIntervalMs < models.MinPollIntervalMs {
		adj = append(adj, fmt.Sprintf("poll_interval_ms %d raised to %d", c.PollIntervalMs, models.MinPollIntervalMs))
		c.PollIntervalMs = models.MinPollIntervalMs
	}
	if c.PollIntervalMs > models.MaxPollIntervalMs {
		adj = append(adj, fmt.Sprintf("poll_interval_ms %d lowered to %d", c.PollIntervalMs, models.MaxPollIntervalMs))
		c.PollIntervalMs = models.MaxPollIntervalMs
	}
	if v := clampPercent(c.HumidityMin); v != c.HumidityMin {
		adj = append(adj, fmt.Sprintf("humidity_min %.1f clamped to %.0f", c.HumidityMin, v))
		c.HumidityMin = v
	}
	if v := clampPercent(c.HumidityMax); v != c.HumidityMax {
		adj = append(adj, fmt.Sprintf("humidity_max %.1f clamped to %.0f", c.HumidityMax, v))
		c.HumidityMax = v
	}
	if c.SoilThreshold < 0 {
		adj = append(adj, fmt.Sprintf("soil_threshold %d raised to 0", c.SoilThreshold))
		c.SoilThreshold = 0
	}
	if adcMax > 0 && c.SoilThreshold > adcMax {
		adj = append(adj, fmt.Sprintf("soil_threshold %d lowered to %d", c.SoilThreshold, adcMax))
		c.SoilThreshold = adcMax
	}
	return c, adj
}

func clampPercent(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
