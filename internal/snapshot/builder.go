// Package snapshot fetches a subnet's registry state, enriches every
// participant with geolocation metadata, and serves the result as the
// subnet HTTP module.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/geo"
	"github.com/subnetscope/subnetscope/internal/metrics"
	"github.com/subnetscope/subnetscope/internal/taostats"
	"github.com/subnetscope/subnetscope/pkg/models"
)

// BuilderConfig holds the builder's pacing knobs. The geolocation pacing is
// deliberately separate from the registry limiter: ip-api has its own quota
// and throttling one upstream must not slow the other.
type BuilderConfig struct {
	PageLimit  int           // metagraph page size
	BatchSize  int           // resolved lookups between pauses
	BatchDelay time.Duration // pause length
}

// Builder assembles normalized subnet snapshots.
type Builder struct {
	client   *taostats.Client
	resolver *geo.Resolver
	cfg      BuilderConfig
	clock    func() time.Time
	logger   *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(client *taostats.Client, resolver *geo.Resolver, cfg BuilderConfig, logger *zap.Logger) *Builder {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 500
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Builder{
		client:   client,
		resolver: resolver,
		cfg:      cfg,
		clock:    time.Now,
		logger:   logger,
	}
}

// Build fetches subnet metadata plus the full participant list and resolves
// each routable axon address sequentially. Participants keep the order the
// registry returned. Geolocation failures degrade to the Unknown sentinel;
// only registry failures abort the build.
func (b *Builder) Build(ctx context.Context, netuid int) (*models.Snapshot, error) {
	start := b.clock()

	sub, err := b.client.SubnetInfo(ctx, netuid)
	if err != nil {
		return nil, fmt.Errorf("fetch subnet info: %w", err)
	}

	neurons, err := b.client.Metagraph(ctx, netuid, b.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch metagraph: %w", err)
	}

	b.logger.Info("building snapshot",
		zap.Int("netuid", netuid),
		zap.Int("participants", len(neurons)),
	)

	participants := make([]models.Participant, 0, len(neurons))
	resolved := 0
	for _, n := range neurons {
		p := participantFrom(n)

		if p.Axon.Routable() {
			p.Location = b.resolver.Resolve(ctx, p.Axon.IP)
			resolved++
			// Pause between lookup batches to stay under the
			// geolocation provider's per-minute quota.
			if b.cfg.BatchDelay > 0 && resolved%b.cfg.BatchSize == 0 {
				b.logger.Debug("geolocation batch complete",
					zap.Int("resolved", resolved),
				)
				if err := pause(ctx, b.cfg.BatchDelay); err != nil {
					return nil, err
				}
			}
		} else {
			metrics.GeoLookups.WithLabelValues("skipped").Inc()
			p.Axon = models.AxonInfo{IP: models.NoAxonIP}
			p.Location = models.UnknownGeoRecord()
		}

		participants = append(participants, p)
	}

	snap := &models.Snapshot{
		Subnet:      subnetMetaFrom(sub, netuid),
		Miners:      participants,
		LastUpdated: b.clock().UTC(),
	}

	metrics.SnapshotBuildDuration.Observe(b.clock().Sub(start).Seconds())
	b.logger.Info("snapshot built",
		zap.Int("netuid", netuid),
		zap.Int("participants", len(participants)),
		zap.Int("resolved", resolved),
	)
	return snap, nil
}

// participantFrom normalizes one raw metagraph row. The axon is carried
// through as advertised; routability is decided by the caller.
func participantFrom(n taostats.Neuron) models.Participant {
	p := models.Participant{
		UID:             n.UID,
		Hotkey:          n.Hotkey.SS58,
		Coldkey:         n.Coldkey.SS58,
		Stake:           n.Stake,
		Trust:           n.Trust,
		Consensus:       n.Consensus,
		Incentive:       n.Incentive,
		Dividends:       n.Dividends,
		Emission:        n.Emission,
		Active:          n.Active,
		ValidatorPermit: n.ValidatorPermit,
		DailyReward:     n.DailyReward,
	}
	if n.Axon != nil {
		port := n.Axon.Port
		protocol := n.Axon.Protocol
		p.Axon = models.AxonInfo{IP: n.Axon.IP, Port: &port, Protocol: &protocol}
	}
	return p
}

func subnetMetaFrom(sub *taostats.Subnet, netuid int) models.SubnetMeta {
	id := sub.Netuid
	if id == 0 {
		id = netuid
	}
	owner := ""
	if sub.Owner != nil {
		owner = sub.Owner.SS58
	}
	return models.SubnetMeta{
		Netuid:           id,
		Name:             fmt.Sprintf("Subnet %d", id),
		Owner:            owner,
		MaxNeurons:       sub.MaxNeurons,
		ActiveKeys:       sub.ActiveKeys,
		Validators:       sub.Validators,
		ActiveValidators: sub.ActiveValidators,
		ActiveMiners:     sub.ActiveMiners,
		Tempo:            sub.Tempo,
		Difficulty:       sub.Difficulty,
		Emission:         sub.Emission,
		RegistrationCost: sub.NeuronRegistrationCost,
	}
}

// pause sleeps for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
