package models

import "time"

// SubnetMeta is the registry's descriptive metadata for one subnet.
type SubnetMeta struct {
	Netuid           int     `json:"netuid"`
	Name             string  `json:"name"`
	Owner            string  `json:"owner"`
	MaxNeurons       int     `json:"max_neurons"`
	ActiveKeys       int     `json:"active_keys"`
	Validators       int     `json:"validators"`
	ActiveValidators int     `json:"active_validators"`
	ActiveMiners     int     `json:"active_miners"`
	Tempo            int     `json:"tempo"`
	Difficulty       float64 `json:"difficulty"`
	Emission         float64 `json:"emission"`
	RegistrationCost float64 `json:"registration_cost"`
}

// Snapshot is one normalized, geolocation-enriched view of a subnet's
// participant registry. Immutable once built; Miners preserves the order
// the registry returned.
type Snapshot struct {
	Subnet      SubnetMeta    `json:"subnet"`
	Miners      []Participant `json:"miners"`
	LastUpdated time.Time     `json:"lastUpdated"`
}
