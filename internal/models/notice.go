package models

import "time"

// Notice kinds.
const (
	NoticeActuatorRollback = "actuator_rollback"
	NoticeConfigAdjusted   = "config_adjusted"
	NoticeDeviceLost       = "device_lost"
)

// Notice is a transient, dismissible message for the operator.
type Notice struct {
	ID        string    `json:"id"`
	RaisedAt  time.Time `json:"raised_at"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Dismissed bool      `json:"dismissed"`
}
