package snapshot

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/taostats"
)

// TopicSnapshotBuilt is published after every successful snapshot build.
// The payload is the *models.Snapshot.
const TopicSnapshotBuilt = "snapshot.built"

// Module is the subnet HTTP module: snapshot fetch with build-on-miss and
// the registry connectivity probe.
type Module struct {
	builder       *Builder
	client        *taostats.Client
	caches        *cache.Store
	bus           *event.Bus
	defaultNetuid int
	logger        *zap.Logger
	config        *viper.Viper
}

// New creates the subnet module.
func New(builder *Builder, client *taostats.Client, caches *cache.Store, bus *event.Bus, defaultNetuid int) *Module {
	return &Module{
		builder:       builder,
		client:        client,
		caches:        caches,
		bus:           bus,
		defaultNetuid: defaultNetuid,
	}
}

func (m *Module) Name() string    { return "subnet" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger
	m.logger.Info("subnet module initialized", zap.Int("default_netuid", m.defaultNetuid))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("subnet module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("subnet module stopped")
	return nil
}
