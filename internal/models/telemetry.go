package models

import "time"

// Telemetry is the read model handed to the dashboard.
type Telemetry struct {
	Reading     Reading        `json:"reading"`
	PumpOn      bool           `json:"pump_on"`
	PumpPending bool           `json:"pump_pending"`
	Status      Statuses       `json:"status"`
	Mode        ConnectionMode `json:"mode"`
	Endpoint    string         `json:"endpoint,omitempty"`
	ADCMax      int            `json:"adc_max"`
	SoilPercent float64        `json:"soil_percent"`
	LastError   string         `json:"last_error,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Display     [2]string      `json:"display"` // 16x2 LCD lines
}
