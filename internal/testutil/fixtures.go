package testutil

import (
	"fmt"

	"github.com/subnetscope/subnetscope/pkg/models"
)

// NewParticipant returns a Participant with sensible defaults, suitable for
// test fixtures. Override individual fields via options.
func NewParticipant(uid int, opts ...func(*models.Participant)) models.Participant {
	port := 8091
	proto := 4
	p := models.Participant{
		UID:     uid,
		Hotkey:  fmt.Sprintf("5Hot%03d", uid),
		Coldkey: fmt.Sprintf("5Cold%03d", uid),
		Stake:   100,
		Active:  true,
		Axon: models.AxonInfo{
			IP:       fmt.Sprintf("198.51.100.%d", uid%250+1),
			Port:     &port,
			Protocol: &proto,
		},
		Location: models.GeoRecord{
			Country:      "Germany",
			City:         "Falkenstein",
			Lat:          50.478,
			Lon:          12.335,
			Region:       "Saxony",
			ISP:          "Hetzner Online GmbH",
			Organization: "Hetzner",
			ASN:          "AS24940 Hetzner Online GmbH",
			ASName:       "HETZNER-AS",
			HostingType:  models.HostingCloud,
			Timezone:     "Europe/Berlin",
			Resolved:     true,
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithColdkey sets the participant's coldkey.
func WithColdkey(key string) func(*models.Participant) {
	return func(p *models.Participant) { p.Coldkey = key }
}

// WithIP sets the axon IP, keeping the location resolved.
func WithIP(ip string) func(*models.Participant) {
	return func(p *models.Participant) { p.Axon.IP = ip }
}

// WithoutAxon removes the axon and downgrades the location to the
// Unknown sentinel, matching what the snapshot builder produces.
func WithoutAxon() func(*models.Participant) {
	return func(p *models.Participant) {
		p.Axon = models.AxonInfo{IP: models.NoAxonIP}
		p.Location = models.UnknownGeoRecord()
	}
}

// WithValidatorPermit marks the participant validator-eligible.
func WithValidatorPermit() func(*models.Participant) {
	return func(p *models.Participant) { p.ValidatorPermit = true }
}

// WithASN sets the location's autonomous-system identifier and name.
func WithASN(asn, asname string) func(*models.Participant) {
	return func(p *models.Participant) {
		p.Location.ASN = asn
		p.Location.ASName = asname
	}
}

// WithHostingType sets the location's hosting classification.
func WithHostingType(ht models.HostingType) func(*models.Participant) {
	return func(p *models.Participant) { p.Location.HostingType = ht }
}

// WithCountry sets the location's country.
func WithCountry(country string) func(*models.Participant) {
	return func(p *models.Participant) { p.Location.Country = country }
}

// NewSnapshot assembles a Snapshot around the given participants.
func NewSnapshot(netuid int, participants ...models.Participant) *models.Snapshot {
	return &models.Snapshot{
		Subnet: models.SubnetMeta{
			Netuid: netuid,
			Name:   fmt.Sprintf("Subnet %d", netuid),
		},
		Miners:      participants,
		LastUpdated: NewClock().Now(),
	}
}
