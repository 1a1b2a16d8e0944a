// Package models defines the data types shared between the SubnetScope
// modules and exposed over the REST API.
package models

// NoAxonIP is the sentinel address assigned to participants that advertise
// no routable axon (validators, offline miners).
const NoAxonIP = "N/A"

// HostingType classifies the network a participant's axon lives on.
type HostingType string

const (
	HostingCloudFlagged HostingType = "Hosting/Cloud"
	HostingCloud        HostingType = "Cloud Provider"
	HostingVPS          HostingType = "VPS/Hosting"
	HostingResidential  HostingType = "Residential"
	HostingDatacenter   HostingType = "Hosting/Datacenter"
	HostingUnknown      HostingType = "Unknown"
)

// AxonInfo is the network endpoint a participant serves queries on.
// Port and Protocol are nil when the participant advertises no axon.
type AxonInfo struct {
	IP       string `json:"ip"`
	Port     *int   `json:"port"`
	Protocol *int   `json:"protocol"`
}

// Routable reports whether the axon carries a real, reachable address.
// The registry publishes "0.0.0.0" and "127.0.0.1" for unset axons.
func (a AxonInfo) Routable() bool {
	switch a.IP {
	case "", NoAxonIP, "0.0.0.0", "127.0.0.1":
		return false
	}
	return true
}

// GeoRecord is the resolved location and network-provider metadata for one
// axon address. Resolved is the authoritative tag: when false the record is
// the Unknown sentinel and its placeholder fields must not feed geographic
// or ASN aggregates.
type GeoRecord struct {
	Country      string      `json:"country"`
	City         string      `json:"city"`
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	Region       string      `json:"region"`
	ISP          string      `json:"isp"`
	Organization string      `json:"organization"`
	ASN          string      `json:"asn"`
	ASName       string      `json:"asname"`
	HostingType  HostingType `json:"hostingType"`
	IsProxy      bool        `json:"isProxy"`
	IsMobile     bool        `json:"isMobile"`
	IsHosting    bool        `json:"isHosting"`
	Timezone     string      `json:"timezone"`
	Resolved     bool        `json:"resolved"`
}

// UnknownGeoRecord returns the sentinel record used when an address could
// not be resolved or the participant has no axon.
func UnknownGeoRecord() GeoRecord {
	return GeoRecord{
		Country:      "Unknown",
		City:         "Unknown",
		Region:       "Unknown",
		ISP:          "Unknown",
		Organization: "Unknown",
		ASN:          "Unknown",
		ASName:       "Unknown",
		HostingType:  HostingUnknown,
		Timezone:     "Unknown",
	}
}

// Participant is one registry entry (miner or validator) of a subnet.
// The numeric scores are registry-defined and carried through unmodified.
type Participant struct {
	UID             int       `json:"uid"`
	Hotkey          string    `json:"hotkey"`
	Coldkey         string    `json:"coldkey"`
	Stake           float64   `json:"stake"`
	Trust           float64   `json:"trust"`
	Consensus       float64   `json:"consensus"`
	Incentive       float64   `json:"incentive"`
	Dividends       float64   `json:"dividends"`
	Emission        float64   `json:"emission"`
	Active          bool      `json:"active"`
	ValidatorPermit bool      `json:"validator_permit"`
	DailyReward     float64   `json:"daily_reward"`
	Axon            AxonInfo  `json:"axon_info"`
	Location        GeoRecord `json:"location"`
}
