package models

import "math"

// ADC full-scale values of the two acquisition sources.
const (
	SimulatedADCMax     = 4095 // ESP32 12-bit ADC, used by the simulated stream
	DefaultDeviceADCMax = 1023 // 10-bit ADC reported by the remote device firmware
)

// Reading is one synchronized snapshot of the rig's sensors.
type Reading struct {
	Temperature  float64 `json:"temperature"`   // °C
	Humidity     float64 `json:"humidity"`      // %
	SoilMoisture int     `json:"soil_moisture"` // raw ADC units
}

// InitialReading is what the dashboard shows before the first tick completes.
func InitialReading() Reading {
	return Reading{Temperature: 28.5, Humidity: 65, SoilMoisture: 1420}
}

// RemoteSnapshot is a reading together with the pump state reported by the device.
type RemoteSnapshot struct {
	Reading Reading `json:"reading"`
	PumpOn  bool    `json:"pump_on"`
}

// RescaleSoilThreshold converts a raw soil threshold between ADC scales so that it
// keeps the same moisture percentage.
func RescaleSoilThreshold(threshold, fromMax, toMax int) int {
	if fromMax <= 0 || toMax <= 0 || fromMax == toMax {
		return threshold
	}
	return int(math.Round(float64(threshold) * float64(toMax) / float64(fromMax)))
}
