package history

import (
	"context"
	"math"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/analyze"
	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/snapshot"
	"github.com/subnetscope/subnetscope/internal/store"
	"github.com/subnetscope/subnetscope/pkg/models"
)

// Module is the history module: it listens for snapshot and analysis
// events on the bus and persists one run record per event.
type Module struct {
	db     *store.SQLiteStore
	repo   Repository
	bus    *event.Bus
	unsubs []func()
	logger *zap.Logger
	config *viper.Viper
}

// New creates the history module.
func New(db *store.SQLiteStore, bus *event.Bus) *Module {
	return &Module{
		db:  db,
		bus: bus,
	}
}

func (m *Module) Name() string    { return "history" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.db.Migrate(context.Background(), m.Name(), Migrations()); err != nil {
		return err
	}
	m.repo = NewSQLiteRepository(m.db.DB())
	m.logger.Info("history module initialized")
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.unsubs = append(m.unsubs,
		m.bus.Subscribe(snapshot.TopicSnapshotBuilt, m.onSnapshotBuilt),
		m.bus.Subscribe(analyze.TopicAnalysisCompleted, m.onAnalysisCompleted),
	)
	m.logger.Info("history module started")
	return nil
}

func (m *Module) Stop() error {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.logger.Info("history module stopped")
	return nil
}

func (m *Module) onSnapshotBuilt(ctx context.Context, e event.Event) {
	snap, ok := e.Payload.(*models.Snapshot)
	if !ok {
		m.logger.Warn("unexpected payload on snapshot topic", zap.String("topic", e.Topic))
		return
	}

	rec := &Record{
		Netuid:       snap.Subnet.Netuid,
		Kind:         KindSnapshot,
		TotalMiners:  len(snap.Miners),
		AxonCoverage: routableCoverage(snap.Miners),
		CreatedAt:    e.Timestamp,
	}
	if err := m.repo.Insert(ctx, rec); err != nil {
		m.logger.Error("record snapshot run", zap.Int("netuid", rec.Netuid), zap.Error(err))
		return
	}
	m.logger.Debug("recorded snapshot run", zap.Int("netuid", rec.Netuid), zap.String("id", rec.ID))
}

func (m *Module) onAnalysisCompleted(ctx context.Context, e event.Event) {
	re, ok := e.Payload.(analyze.ReportEvent)
	if !ok || re.Report == nil {
		m.logger.Warn("unexpected payload on analysis topic", zap.String("topic", e.Topic))
		return
	}

	rec := &Record{
		Netuid:       re.Netuid,
		Kind:         KindAnalysis,
		TotalMiners:  re.Report.TotalMiners,
		AxonCoverage: re.Report.MinerAxonCoverage,
		HHI:          re.Report.HHI,
		AdjustedHHI:  re.Report.AdjustedHHI,
		Level:        string(re.Report.ConcentrationLevel),
		Score:        re.Report.DecentralizationScore,
		ClusterCount: re.Report.IPClusterCount,
		CreatedAt:    e.Timestamp,
	}
	if err := m.repo.Insert(ctx, rec); err != nil {
		m.logger.Error("record analysis run", zap.Int("netuid", rec.Netuid), zap.Error(err))
		return
	}
	m.logger.Debug("recorded analysis run", zap.Int("netuid", rec.Netuid), zap.String("id", rec.ID))
}

func routableCoverage(miners []models.Participant) float64 {
	if len(miners) == 0 {
		return 0
	}
	routable := 0
	for i := range miners {
		if miners[i].Axon.Routable() {
			routable++
		}
	}
	pct := float64(routable) / float64(len(miners)) * 100
	return math.Round(pct*100) / 100
}
