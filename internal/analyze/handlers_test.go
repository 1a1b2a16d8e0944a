package analyze_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/subnetscope/subnetscope/internal/analyze"
	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/testutil"
	"github.com/subnetscope/subnetscope/pkg/models"
)

func newModule(t *testing.T) (*analyze.Module, *cache.Store, *event.Bus, http.Handler) {
	t.Helper()
	logger := testutil.Logger()
	caches := cache.NewStore(300 * time.Second)
	bus := event.NewBus(logger)

	m := analyze.New(caches, bus)
	if err := m.Init(viper.New(), logger); err != nil {
		t.Fatalf("Init: %v", err)
	}

	mux := http.NewServeMux()
	for _, route := range m.Routes() {
		mux.HandleFunc(fmt.Sprintf("%s /api/v1/%s%s", route.Method, m.Name(), route.Path), route.Handler)
	}
	return m, caches, bus, mux
}

func TestAnalyzeRequiresCachedSnapshot(t *testing.T) {
	_, _, _, mux := newModule(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/analyze/8", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("analyze without snapshot returned %d, want 400", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] != "Subnet data not found. Fetch subnet data first." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeComputesAndCaches(t *testing.T) {
	_, caches, bus, mux := newModule(t)

	var events atomic.Int32
	bus.Subscribe(analyze.TopicAnalysisCompleted, func(ctx context.Context, e event.Event) {
		re, ok := e.Payload.(analyze.ReportEvent)
		if !ok || re.Netuid != 8 || re.Report == nil {
			t.Errorf("unexpected event payload: %+v", e.Payload)
			return
		}
		events.Add(1)
	})

	caches.Snapshots.Set(8, testutil.NewSnapshot(8,
		testutil.NewParticipant(0, testutil.WithColdkey("a")),
		testutil.NewParticipant(1, testutil.WithColdkey("a")),
	))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/analyze/8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.HHI != 10000 || report.ConcentrationLevel != models.HighlyConcentrated {
		t.Errorf("report = %d/%q", report.HHI, report.ConcentrationLevel)
	}
	if _, ok := caches.Analyses.Get(8); !ok {
		t.Error("report not cached after analysis")
	}
	if events.Load() != 1 {
		t.Errorf("analysis event published %d times, want 1", events.Load())
	}

	// Cached reports are served without recomputation or a second event.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/analyze/8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cached analyze returned %d", rec.Code)
	}
	if events.Load() != 1 {
		t.Error("cache hit republished the analysis event")
	}
}

func TestAnalyzeRejectsBadID(t *testing.T) {
	_, _, _, mux := newModule(t)

	for _, id := range []string{"abc", "-3"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/analyze/"+id, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q returned %d, want 400", id, rec.Code)
		}
	}
}
