package analyze

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/pkg/models"
)

// TopicAnalysisCompleted is published after every fresh analysis. The
// payload is a ReportEvent.
const TopicAnalysisCompleted = "analysis.completed"

// ReportEvent carries a completed analysis to bus subscribers.
type ReportEvent struct {
	Netuid int
	Report *models.AnalysisReport
}

// Module is the analyze HTTP module: concentration reports computed from
// cached snapshots.
type Module struct {
	caches *cache.Store
	bus    *event.Bus
	logger *zap.Logger
	config *viper.Viper
}

// New creates the analyze module.
func New(caches *cache.Store, bus *event.Bus) *Module {
	return &Module{
		caches: caches,
		bus:    bus,
	}
}

func (m *Module) Name() string    { return "analyze" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger
	m.logger.Info("analyze module initialized")
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("analyze module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("analyze module stopped")
	return nil
}
