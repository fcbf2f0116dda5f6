package models

// StatusBand is a discrete health classification of one metric.
type StatusBand string

const (
	StatusNormal  StatusBand = "normal"
	StatusWarning StatusBand = "warning"
	StatusDanger  StatusBand = "danger"
)

// Statuses carries one band per metric.
type Statuses struct {
	Temperature StatusBand `json:"temperature"`
	Humidity    StatusBand `json:"humidity"`
	Soil        StatusBand `json:"soil"`
}
