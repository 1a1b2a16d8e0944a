package geo

import (
	"testing"

	"github.com/subnetscope/subnetscope/pkg/models"
)

func TestClassifyHosting(t *testing.T) {
	tests := []struct {
		name      string
		isp       string
		org       string
		asn       string
		isHosting bool
		want      models.HostingType
	}{
		{
			name:      "explicit hosting flag wins over everything",
			isp:       "Comcast Cable",
			isHosting: true,
			want:      models.HostingCloudFlagged,
		},
		{
			name: "cloud vendor in ISP",
			isp:  "Amazon Technologies Inc.",
			want: models.HostingCloud,
		},
		{
			name: "cloud vendor in org only",
			isp:  "Some Reseller",
			org:  "Google LLC",
			want: models.HostingCloud,
		},
		{
			name: "cloud vendor in AS description only",
			isp:  "Generic Carrier",
			asn:  "AS24940 Hetzner Online GmbH",
			want: models.HostingCloud,
		},
		{
			name: "vps vendor",
			isp:  "Contabo GmbH",
			want: models.HostingVPS,
		},
		{
			name: "residential brand",
			isp:  "Comcast Cable Communications",
			want: models.HostingResidential,
		},
		{
			name: "cloud beats residential-sounding org",
			isp:  "Vodafone DSL", // residential brand...
			org:  "OVH SAS",      // ...but the org is a cloud vendor
			want: models.HostingCloud,
		},
		{
			name: "generic datacenter token",
			isp:  "FastServer Datacenter Ltd",
			want: models.HostingDatacenter,
		},
		{
			name: "generic hosting token",
			isp:  "Cheap Web Hosting Co",
			want: models.HostingDatacenter,
		},
		{
			name: "generic broadband token",
			isp:  "Rural Fiber Cooperative",
			want: models.HostingResidential,
		},
		{
			name: "nothing matches",
			isp:  "Acme Telecom",
			org:  "Acme",
			asn:  "AS65000 ACME-NET",
			want: models.HostingUnknown,
		},
		{
			name: "all empty",
			want: models.HostingUnknown,
		},
		{
			name: "matching is case-insensitive",
			isp:  "HETZNER ONLINE",
			want: models.HostingCloud,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHosting(tt.isp, tt.org, tt.asn, tt.isHosting)
			if got != tt.want {
				t.Errorf("ClassifyHosting(%q, %q, %q, %v) = %q, want %q",
					tt.isp, tt.org, tt.asn, tt.isHosting, got, tt.want)
			}
		})
	}
}
