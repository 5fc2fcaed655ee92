package models

import "time"

// SensorState is a point-in-time copy of one sensor, shaped the way the
// host expects entity state.
type SensorState struct {
	Name       string           `json:"name"`
	UniqueID   string           `json:"unique_id"`
	State      any              `json:"state"`
	Icon       string           `json:"icon,omitempty"`
	Attributes SensorAttributes `json:"extra_state_attributes"`
}

type SensorAttributes struct {
	UnitOfMeasurement string `json:"unit_of_measurement"`
	LastUpdated       string `json:"last_updated"`
}

type ServiceStatus struct {
	PlayerID    string     `json:"player_id"`
	PlayerName  string     `json:"player_name"`
	Auth        AuthResult `json:"auth"`
	Sensors     int        `json:"sensors"`
	LastFetched time.Time  `json:"last_fetched"`
}
