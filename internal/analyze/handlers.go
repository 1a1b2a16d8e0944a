package analyze

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/metrics"
	"github.com/subnetscope/subnetscope/internal/plugin"
)

// Routes implements the module's HTTP surface.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/{id}", Handler: m.handleAnalyze},
	}
}

// handleAnalyze returns the concentration report for one subnet, computing
// it from the cached snapshot on a report-cache miss.
//
//	@Summary		Analyze subnet concentration
//	@Description	Returns the ownership, address-cluster, ASN and hosting concentration report for a previously fetched subnet.
//	@Tags			analyze
//	@Produce		json
//	@Param			id path int true "Subnet netuid"
//	@Success		200 {object} models.AnalysisReport
//	@Failure		400 {object} map[string]any
//	@Router			/analyze/{id} [get]
func (m *Module) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	netuid, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || netuid < 0 {
		analyzeWriteError(w, http.StatusBadRequest, "Invalid subnet id", r.PathValue("id"))
		return
	}

	if report, ok := m.caches.Analyses.Get(netuid); ok {
		m.logger.Debug("returning cached analysis", zap.Int("netuid", netuid))
		analyzeWriteJSON(w, http.StatusOK, report)
		return
	}

	// Analysis never fetches on its own; the snapshot must already be
	// cached by the subnet module.
	snap, ok := m.caches.Snapshots.Get(netuid)
	if !ok {
		analyzeWriteError(w, http.StatusBadRequest,
			"Subnet data not found. Fetch subnet data first.",
			"no cached snapshot for netuid "+strconv.Itoa(netuid))
		return
	}

	start := time.Now()
	report := Analyze(snap, time.Now().UTC())
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	m.caches.Analyses.Set(netuid, report)
	m.bus.Publish(r.Context(), event.Event{
		Topic:     TopicAnalysisCompleted,
		Source:    m.Name(),
		Timestamp: time.Now().UTC(),
		Payload:   ReportEvent{Netuid: netuid, Report: report},
	})
	m.logger.Info("analysis completed",
		zap.Int("netuid", netuid),
		zap.Int("miners", report.TotalMiners),
		zap.Int("adjusted_hhi", report.AdjustedHHI),
		zap.String("level", string(report.ConcentrationLevel)))

	analyzeWriteJSON(w, http.StatusOK, report)
}

// -- helpers --

func analyzeWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func analyzeWriteError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   message,
		"details": details,
	})
}
