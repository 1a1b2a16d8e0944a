package snapshot

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/plugin"
)

// Routes implements the module's HTTP surface.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/test-connection", Handler: m.handleTestConnection},
		{Method: "GET", Path: "/{id}", Handler: m.handleGetSubnet},
	}
}

// handleGetSubnet returns the snapshot for one subnet, building it on a
// cache miss.
//
//	@Summary		Get subnet snapshot
//	@Description	Returns the geolocation-enriched participant snapshot, building and caching it when absent.
//	@Tags			subnet
//	@Produce		json
//	@Param			id path int true "Subnet netuid"
//	@Success		200 {object} models.Snapshot
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/subnet/{id} [get]
func (m *Module) handleGetSubnet(w http.ResponseWriter, r *http.Request) {
	netuid, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || netuid < 0 {
		subnetWriteError(w, http.StatusBadRequest, "Invalid subnet id", r.PathValue("id"))
		return
	}

	if snap, ok := m.caches.Snapshots.Get(netuid); ok {
		m.logger.Debug("returning cached snapshot", zap.Int("netuid", netuid))
		subnetWriteJSON(w, http.StatusOK, snap)
		return
	}

	// The sequential geolocation loop keeps running when the requester
	// disconnects so the cache still gets populated for the next caller.
	buildCtx := context.WithoutCancel(r.Context())
	snap, err := m.builder.Build(buildCtx, netuid)
	if err != nil {
		m.logger.Warn("snapshot build failed", zap.Int("netuid", netuid), zap.Error(err))
		subnetWriteError(w, http.StatusInternalServerError, "Failed to fetch subnet data", err.Error())
		return
	}

	m.caches.Snapshots.Set(netuid, snap)
	m.bus.Publish(buildCtx, event.Event{
		Topic:     TopicSnapshotBuilt,
		Source:    m.Name(),
		Timestamp: time.Now().UTC(),
		Payload:   snap,
	})

	subnetWriteJSON(w, http.StatusOK, snap)
}

// handleTestConnection probes the registry API and reports the response
// structure.
//
//	@Summary		Test registry connectivity
//	@Description	Issues a minimal authenticated registry request and reports what came back.
//	@Tags			subnet
//	@Produce		json
//	@Success		200 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/subnet/test-connection [get]
func (m *Module) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	probe, err := m.client.Probe(r.Context(), m.defaultNetuid)
	if err != nil {
		m.logger.Warn("registry probe failed", zap.Error(err))
		subnetWriteJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "API connection failed",
			"error":   err.Error(),
		})
		return
	}

	subnetWriteJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"message":      "API connection successful",
		"subnet_found": probe.SubnetFound,
		"api_response_structure": map[string]any{
			"has_pagination": probe.HasPagination,
			"has_data":       probe.HasData,
			"data_count":     probe.DataCount,
		},
	})
}

// -- helpers --

func subnetWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func subnetWriteError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   message,
		"details": details,
	})
}
