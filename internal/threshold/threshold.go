// Package threshold maps readings onto status bands. All functions are pure and
// total: any finite or non-finite input yields a band.
package threshold

import (
	"math"

	"smartgarden/internal/models"
)

// ClassifyTemperature returns Danger outside the danger band, Warning outside the
// warning band and Normal otherwise. Non-finite values are Danger.
func ClassifyTemperature(v float64, cfg models.ThresholdConfig) models.StatusBand {
	if !finite(v) {
		return models.StatusDanger
	}
	if v < cfg.TempDangerMin || v > cfg.TempDangerMax {
		return models.StatusDanger
	}
	if v < cfg.TempWarnMin || v > cfg.TempWarnMax {
		return models.StatusWarning
	}
	return models.StatusNormal
}

// ClassifyHumidity has no danger band.
func ClassifyHumidity(v float64, cfg models.ThresholdConfig) models.StatusBand {
	if !finite(v) || v < cfg.HumidityMin || v > cfg.HumidityMax {
		return models.StatusWarning
	}
	return models.StatusNormal
}

// ClassifySoil reports Warning ("needs watering") when the moisture percentage is
// below the threshold percentage, both taken on the same adcMax scale.
func ClassifySoil(v int, cfg models.ThresholdConfig, adcMax int) models.StatusBand {
	if adcMax <= 0 {
		if v < cfg.SoilThreshold {
			return models.StatusWarning
		}
		return models.StatusNormal
	}
	if SoilPercent(v, adcMax) < SoilPercent(cfg.SoilThreshold, adcMax) {
		return models.StatusWarning
	}
	return models.StatusNormal
}

// SoilPercent converts a raw ADC value to a percentage of adcMax.
func SoilPercent(v, adcMax int) float64 {
	if adcMax <= 0 {
		return 0
	}
	return float64(v) / float64(adcMax) * 100
}

// Evaluate classifies every metric of r.
func Evaluate(r models.Reading, cfg models.ThresholdConfig, adcMax int) models.Statuses {
	return models.Statuses{
		Temperature: ClassifyTemperature(r.Temperature, cfg),
		Humidity:    ClassifyHumidity(r.Humidity, cfg),
		Soil:        ClassifySoil(r.SoilMoisture, cfg, adcMax),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
