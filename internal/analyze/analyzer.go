// Package analyze computes the decentralization/centralization report over
// a subnet snapshot: ownership grouping, shared-address clustering, ASN
// concentration, hosting distribution, and Herfindahl-Hirschman-based
// scoring. Analysis is a pure function of the snapshot; it does no I/O and
// produces identical reports for identical inputs.
package analyze

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/subnetscope/subnetscope/pkg/models"
)

// ownerGroupKeyUnknown collects participants whose registry row carries no
// coldkey.
const ownerGroupKeyUnknown = "unknown"

// orderedGroups partitions values by key while remembering first-seen key
// order, so count-descending sorts break ties deterministically by
// participant order rather than map iteration order.
type orderedGroups struct {
	keys    []string
	members map[string][]*models.Participant
}

func newOrderedGroups() *orderedGroups {
	return &orderedGroups{members: make(map[string][]*models.Participant)}
}

func (g *orderedGroups) add(key string, p *models.Participant) {
	if _, ok := g.members[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.members[key] = append(g.members[key], p)
}

// Analyze derives the full concentration report for snap. The at timestamp
// is recorded as LastAnalyzed; passing a fixed time makes the result fully
// deterministic.
func Analyze(snap *models.Snapshot, at time.Time) *models.AnalysisReport {
	miners := snap.Miners
	total := len(miners)

	owners := newOrderedGroups()
	addresses := newOrderedGroups()
	asns := newOrderedGroups()
	hostingCounts := make(map[models.HostingType]int)
	hostingOrder := []models.HostingType{}
	countries := make(map[string]int)

	for i := range miners {
		p := &miners[i]

		coldkey := p.Coldkey
		if coldkey == "" {
			coldkey = ownerGroupKeyUnknown
		}
		owners.add(coldkey, p)

		if p.Axon.Routable() {
			addresses.add(p.Axon.IP, p)
		}

		// ASN and country aggregates trust the resolution tag, not
		// placeholder field values.
		if p.Location.Resolved && p.Location.ASN != "" {
			asns.add(p.Location.ASN, p)
		}

		hostingType := p.Location.HostingType
		if hostingType == "" {
			hostingType = models.HostingUnknown
		}
		if _, seen := hostingCounts[hostingType]; !seen {
			hostingOrder = append(hostingOrder, hostingType)
		}
		hostingCounts[hostingType]++

		country := p.Location.Country
		if !p.Location.Resolved || country == "" {
			country = "Unknown"
		}
		countries[country]++
	}

	ipClusters := suspiciousClusters(addresses)
	asnConcentration := asnGroups(asns, total)
	hostingDistribution := hostingBuckets(hostingCounts, hostingOrder, total)

	// Base concentration index: standard HHI over ownership-group
	// percentage shares (0-10000).
	baseHHI := 0.0
	for _, key := range owners.keys {
		share := percentage(len(owners.members[key]), total)
		baseHHI += share * share
	}

	// Shared-address clusters are a distinct NAT/shared-infrastructure
	// risk on top of ownership concentration; weight them at half.
	clusterPenalty := 0.0
	for _, cluster := range ipClusters {
		share := percentage(cluster.Count, total)
		clusterPenalty += share * share * 0.5
	}
	adjustedHHI := baseHHI + clusterPenalty

	cloudRisk := percentage(
		hostingCounts[models.HostingCloud]+
			hostingCounts[models.HostingCloudFlagged]+
			hostingCounts[models.HostingVPS],
		total,
	)

	withAddress := 0
	validators := 0
	validatorsWithoutAxons := 0
	nonValidatorsWithoutAxons := 0
	for i := range miners {
		p := &miners[i]
		routable := p.Axon.Routable()
		if routable {
			withAddress++
		}
		if p.ValidatorPermit {
			validators++
			if !routable {
				validatorsWithoutAxons++
			}
		} else if !routable {
			nonValidatorsWithoutAxons++
		}
	}

	axonCoverage := round2(percentage(withAddress, total))

	return &models.AnalysisReport{
		TotalMiners:           total,
		UniqueOwners:          len(owners.keys),
		HHI:                   int(math.Round(baseHHI)),
		AdjustedHHI:           int(math.Round(adjustedHHI)),
		ConcentrationLevel:    concentrationLevel(adjustedHHI, len(ipClusters)),
		TopOwners:             topOwners(owners, total),
		GeographicDist:        countries,
		DecentralizationScore: decentralizationScore(baseHHI, len(ipClusters), cloudRisk),

		IPClusters:              ipClusters,
		IPClusterCount:          len(ipClusters),
		ASNConcentration:        asnConcentration,
		HostingDistribution:     hostingDistribution,
		CloudCentralizationRisk: round2(cloudRisk),
		TotalUniqueIPs:          len(addresses.keys),
		TotalUniqueASNs:         len(asns.keys),

		MinersWithIPs:             withAddress,
		MinersWithoutIPs:          total - withAddress,
		ValidatorCount:            validators,
		ValidatorsWithoutAxons:    validatorsWithoutAxons,
		PotentiallyInactiveMiners: nonValidatorsWithoutAxons,
		MinerAxonCoverage:         axonCoverage,
		AxonCoverage:              axonCoverage,

		LastAnalyzed: at,
	}
}

// suspiciousClusters returns the shared-address clusters (two or more
// participants on one exact address), largest first.
func suspiciousClusters(addresses *orderedGroups) []models.IPCluster {
	clusters := make([]models.IPCluster, 0)
	for _, ip := range addresses.keys {
		members := addresses.members[ip]
		if len(members) < 2 {
			continue
		}
		uids := make([]int, len(members))
		for i, p := range members {
			uids[i] = p.UID
		}
		first := members[0]
		clusters = append(clusters, models.IPCluster{
			IP:          ip,
			Count:       len(members),
			UIDs:        uids,
			Location:    first.Location.City + ", " + first.Location.Country,
			HostingType: first.Location.HostingType,
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
	return clusters
}

// asnGroups returns the top 10 autonomous systems by participant count.
func asnGroups(asns *orderedGroups, total int) []models.ASNGroup {
	groups := make([]models.ASNGroup, 0, len(asns.keys))
	for _, asn := range asns.keys {
		members := asns.members[asn]
		first := members[0]
		asname := first.Location.ASName
		if asname == "" {
			asname = "Unknown"
		}
		groups = append(groups, models.ASNGroup{
			ASN:         asnNumber(asn),
			ASName:      asname,
			Count:       len(members),
			Percentage:  round2(percentage(len(members), total)),
			HostingType: first.Location.HostingType,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	if len(groups) > 10 {
		groups = groups[:10]
	}
	return groups
}

// asnNumber strips the descriptive suffix from an AS string like
// "AS24940 Hetzner Online GmbH".
func asnNumber(asn string) string {
	if fields := strings.Fields(asn); len(fields) > 0 {
		return fields[0]
	}
	return asn
}

// hostingBuckets returns the hosting-type distribution sorted by
// descending count.
func hostingBuckets(counts map[models.HostingType]int, order []models.HostingType, total int) []models.HostingBucket {
	buckets := make([]models.HostingBucket, 0, len(order))
	for _, ht := range order {
		buckets = append(buckets, models.HostingBucket{
			Type:       ht,
			Count:      counts[ht],
			Percentage: round1(percentage(counts[ht], total)),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// topOwners returns the ten largest ownership groups with truncated owner
// labels.
func topOwners(owners *orderedGroups, total int) []models.OwnerGroup {
	groups := make([]models.OwnerGroup, 0, len(owners.keys))
	for _, coldkey := range owners.keys {
		groups = append(groups, models.OwnerGroup{
			Coldkey:    truncateKey(coldkey),
			Count:      len(owners.members[coldkey]),
			Percentage: round2(percentage(len(owners.members[coldkey]), total)),
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	if len(groups) > 10 {
		groups = groups[:10]
	}
	return groups
}

// truncateKey shortens an owner key for display, keeping a recognizable
// prefix.
func truncateKey(key string) string {
	if len(key) > 8 {
		key = key[:8]
	}
	return key + "..."
}

// concentrationLevel buckets the unrounded adjusted index, first match
// wins. A high suspicious-cluster count escalates the level even when the
// index alone would not.
func concentrationLevel(adjustedHHI float64, clusterCount int) models.ConcentrationLevel {
	switch {
	case adjustedHHI > 2500 || clusterCount > 5:
		return models.HighlyConcentrated
	case adjustedHHI > 1500 || clusterCount > 2:
		return models.ModeratelyConcentrated
	case adjustedHHI > 1000 || clusterCount > 0:
		return models.Unconcentrated
	default:
		return models.HighlyDecentralized
	}
}

// decentralizationScore is the capped additive-penalty heuristic: the HHI
// base score minus bounded cluster and cloud penalties, floored at zero.
func decentralizationScore(baseHHI float64, clusterCount int, cloudRisk float64) float64 {
	base := math.Max(0, 100-baseHHI/100)
	clusterPenalty := math.Min(20, float64(clusterCount)*5)
	cloudPenalty := math.Min(30, cloudRisk*0.5)
	return round2(math.Max(0, base-clusterPenalty-cloudPenalty))
}

// percentage guards the zero-total case by returning 0 instead of dividing.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
