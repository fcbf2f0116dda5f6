package models

// ConnectionMode tells where readings currently come from.
type ConnectionMode string

const (
	ModeSimulated    ConnectionMode = "simulated"
	ModeConnecting   ConnectionMode = "connecting"
	ModeConnected    ConnectionMode = "connected"
	ModeDisconnected ConnectionMode = "disconnected"
)

// ConnectionStatus is the mode together with the endpoint it applies to.
type ConnectionStatus struct {
	Mode     ConnectionMode `json:"mode"`
	Endpoint string         `json:"endpoint,omitempty"`
}
