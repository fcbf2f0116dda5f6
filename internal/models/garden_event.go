package models

import "time"

// Event types recorded in the in-memory audit log.
const (
	EventModeChange       = "MODE_CHANGE"
	EventConfigChange     = "CONFIG_CHANGE"
	EventActuator         = "ACTUATOR"
	EventActuatorRollback = "ACTUATOR_ROLLBACK"
	EventAcquisitionError = "ACQUISITION_ERROR"
)

// GardenEvent is a single log entry.
type GardenEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGE | CONFIG_CHANGE | ACTUATOR | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
