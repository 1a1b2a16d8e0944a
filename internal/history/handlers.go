package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/plugin"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Routes implements the module's HTTP surface.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/runs", Handler: m.handleListRuns},
	}
}

// handleListRuns returns logged runs, newest first.
//
//	@Summary		List recorded runs
//	@Description	Returns snapshot and analysis run records, optionally filtered by subnet.
//	@Tags			history
//	@Produce		json
//	@Param			netuid query int false "Filter by subnet netuid"
//	@Param			limit query int false "Maximum records to return (default 50, max 500)"
//	@Success		200 {object} map[string]any
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/history/runs [get]
func (m *Module) handleListRuns(w http.ResponseWriter, r *http.Request) {
	netuid := -1
	if raw := r.URL.Query().Get("netuid"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			historyWriteError(w, http.StatusBadRequest, "Invalid netuid filter", raw)
			return
		}
		netuid = n
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			historyWriteError(w, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	runs, err := m.repo.List(r.Context(), netuid, limit)
	if err != nil {
		m.logger.Error("list runs failed", zap.Error(err))
		historyWriteError(w, http.StatusInternalServerError, "Failed to list runs", err.Error())
		return
	}

	historyWriteJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// -- helpers --

func historyWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func historyWriteError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   message,
		"details": details,
	})
}
