package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"smartgarden/internal/models"
	"smartgarden/internal/threshold"
)

type MonitoringService struct {
	store *Store
}

func NewMonitoringService(store *Store) *MonitoringService {
	return &MonitoringService{store: store}
}

// GetTelemetry returns the current reading with its status bands. Bands are
// derived on every call and never stored.
func (s *MonitoringService) GetTelemetry(ctx context.Context) models.Telemetry {
	snap := s.store.snapshot()
	adcMax := snap.ADCMax()
	cfg := snap.EffectiveConfig()

	return models.Telemetry{
		Reading:     snap.Reading,
		PumpOn:      snap.PumpOn,
		PumpPending: snap.PumpPending,
		Status:      threshold.Evaluate(snap.Reading, cfg, adcMax),
		Mode:        snap.Mode,
		Endpoint:    snap.Endpoint,
		ADCMax:      adcMax,
		SoilPercent: threshold.SoilPercent(snap.Reading.SoilMoisture, adcMax),
		LastError:   snap.LastError,
		UpdatedAt:   toUTC(snap.UpdatedAt),
		Display:     lcdLines(snap.Reading, snap.PumpOn),
	}
}

// lcdLines renders the two 16x2 LCD rows the rig shows.
func lcdLines(r models.Reading, pumpOn bool) [2]string {
	return [2]string{
		fmt.Sprintf("T:%sC H:%s%%", formatNumber(r.Temperature), formatNumber(r.Humidity)),
		fmt.Sprintf("Soil: %d %s", r.SoilMoisture, onOff(pumpOn)),
	}
}

// formatNumber prints v without trailing zeros (28.5, 65).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
