package geo

import (
	"strings"

	"github.com/subnetscope/subnetscope/pkg/models"
)

// Vendor vocabularies for hosting classification. Compiled-in: the lists
// change rarely and a wrong entry silently skews every report, so they ship
// with the binary and change under review.
var (
	// Major cloud operators. Matching any of these dominates the generic
	// heuristics below.
	cloudProviders = []string{
		"amazon", "aws", "microsoft", "azure", "google", "gcp", "digitalocean",
		"vultr", "linode", "ovh", "hetzner", "cloudflare", "oracle",
	}

	// VPS and budget hosting vendors.
	vpsProviders = []string{
		"contabo", "hostinger", "godaddy", "namecheap", "dreamhost", "bluehost",
	}

	// Residential telecom/cable/fiber brands. Checked after the cloud and
	// VPS lists so a cloud reseller with a residential-sounding name is not
	// misclassified.
	residentialISPs = []string{
		"comcast", "verizon", "att", "charter", "cox", "spectrum", "frontier",
		"centurylink", "telus", "rogers", "bell", "shaw", "bt", "sky", "vodafone",
	}
)

// ClassifyHosting maps ISP/organization/AS description text and the
// upstream hosting flag to a hosting type. Precedence: explicit hosting
// flag, named cloud vendors, VPS vendors, residential brands, then generic
// datacenter and broadband tokens.
func ClassifyHosting(isp, org, asn string, isHosting bool) models.HostingType {
	if isHosting {
		return models.HostingCloudFlagged
	}

	lowerISP := strings.ToLower(isp)
	lowerOrg := strings.ToLower(org)
	lowerASN := strings.ToLower(asn)

	for _, provider := range cloudProviders {
		if strings.Contains(lowerISP, provider) ||
			strings.Contains(lowerOrg, provider) ||
			strings.Contains(lowerASN, provider) {
			return models.HostingCloud
		}
	}

	for _, provider := range vpsProviders {
		if strings.Contains(lowerISP, provider) || strings.Contains(lowerOrg, provider) {
			return models.HostingVPS
		}
	}

	for _, provider := range residentialISPs {
		if strings.Contains(lowerISP, provider) || strings.Contains(lowerOrg, provider) {
			return models.HostingResidential
		}
	}

	if strings.Contains(lowerISP, "datacenter") ||
		strings.Contains(lowerISP, "server") ||
		strings.Contains(lowerISP, "hosting") {
		return models.HostingDatacenter
	}

	if strings.Contains(lowerISP, "cable") ||
		strings.Contains(lowerISP, "fiber") ||
		strings.Contains(lowerISP, "broadband") {
		return models.HostingResidential
	}

	return models.HostingUnknown
}
