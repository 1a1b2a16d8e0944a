package models

import "time"

// ConcentrationLevel buckets the adjusted concentration index.
type ConcentrationLevel string

const (
	HighlyConcentrated     ConcentrationLevel = "Highly Concentrated"
	ModeratelyConcentrated ConcentrationLevel = "Moderately Concentrated"
	Unconcentrated         ConcentrationLevel = "Unconcentrated"
	HighlyDecentralized    ConcentrationLevel = "Highly Decentralized"
)

// OwnerGroup is one coldkey ownership group in the top-owners list.
type OwnerGroup struct {
	Coldkey    string  `json:"coldkey"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// IPCluster is a set of two or more participants sharing one axon address.
type IPCluster struct {
	IP          string      `json:"ip"`
	Count       int         `json:"count"`
	UIDs        []int       `json:"uids"`
	Location    string      `json:"location"`
	HostingType HostingType `json:"hostingType"`
}

// ASNGroup is one autonomous-system bucket in the concentration list.
type ASNGroup struct {
	ASN         string      `json:"asn"`
	ASName      string      `json:"asname"`
	Count       int         `json:"count"`
	Percentage  float64     `json:"percentage"`
	HostingType HostingType `json:"hostingType"`
}

// HostingBucket is one hosting-type slice of the distribution.
type HostingBucket struct {
	Type       HostingType `json:"type"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

// AnalysisReport is the derived decentralization report over one Snapshot.
// Created once per analysis run and never mutated afterwards.
type AnalysisReport struct {
	TotalMiners           int                `json:"totalMiners"`
	UniqueOwners          int                `json:"uniqueOwners"`
	HHI                   int                `json:"hhi"`
	AdjustedHHI           int                `json:"adjustedHHI"`
	ConcentrationLevel    ConcentrationLevel `json:"concentrationLevel"`
	TopOwners             []OwnerGroup       `json:"topOwners"`
	GeographicDist        map[string]int     `json:"geographicDistribution"`
	DecentralizationScore float64            `json:"decentralizationScore"`

	IPClusters              []IPCluster     `json:"ipClusters"`
	IPClusterCount          int             `json:"ipClusterCount"`
	ASNConcentration        []ASNGroup      `json:"asnConcentration"`
	HostingDistribution     []HostingBucket `json:"hostingDistribution"`
	CloudCentralizationRisk float64         `json:"cloudCentralizationRisk"`
	TotalUniqueIPs          int             `json:"totalUniqueIPs"`
	TotalUniqueASNs         int             `json:"totalUniqueASNs"`

	MinersWithIPs             int     `json:"minersWithIPs"`
	MinersWithoutIPs          int     `json:"minersWithoutIPs"`
	ValidatorCount            int     `json:"validatorCount"`
	ValidatorsWithoutAxons    int     `json:"validatorsWithoutAxons"`
	PotentiallyInactiveMiners int     `json:"potentiallyInactiveMiners"`
	MinerAxonCoverage         float64 `json:"minerAxonCoverage"`
	// AxonCoverage mirrors MinerAxonCoverage for older dashboard builds.
	AxonCoverage float64 `json:"axonCoverage"`

	LastAnalyzed time.Time `json:"lastAnalyzed"`
}
