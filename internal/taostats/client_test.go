package taostats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/subnetscope/subnetscope/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, minInterval time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		MinInterval: minInterval,
	}, testutil.Logger())
}

func TestSubnetInfoSendsAuthHeader(t *testing.T) {
	var gotAuth, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"pagination":{"total_items":1},"data":[{"netuid":8,"max_neurons":256}]}`))
	}, 0)

	sub, err := client.SubnetInfo(context.Background(), 8)
	if err != nil {
		t.Fatalf("SubnetInfo() error = %v", err)
	}
	if gotAuth != "test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "test-key")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if sub.Netuid != 8 || sub.MaxNeurons != 256 {
		t.Errorf("SubnetInfo() = %+v, want netuid 8, max_neurons 256", sub)
	}
}

func TestSubnetInfoEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pagination":null,"data":[]}`))
	}, 0)

	sub, err := client.SubnetInfo(context.Background(), 404)
	if err != nil {
		t.Fatalf("SubnetInfo() error = %v", err)
	}
	if sub.Netuid != 0 {
		t.Errorf("SubnetInfo() on empty data = %+v, want zero Subnet", sub)
	}
}

func TestMetagraphQueryAndOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("netuid"); got != "8" {
			t.Errorf("netuid query = %q, want 8", got)
		}
		if got := r.URL.Query().Get("limit"); got != "500" {
			t.Errorf("limit query = %q, want 500", got)
		}
		w.Write([]byte(`{"data":[
			{"uid":2,"hotkey":{"ss58":"hk2"},"coldkey":{"ss58":"ck2"},"axon":{"ip":"1.2.3.4","port":8091,"protocol":4}},
			{"uid":0,"hotkey":{"ss58":"hk0"},"coldkey":{"ss58":"ck0"},"validator_permit":true}
		]}`))
	}, 0)

	neurons, err := client.Metagraph(context.Background(), 8, 500)
	if err != nil {
		t.Fatalf("Metagraph() error = %v", err)
	}
	if len(neurons) != 2 {
		t.Fatalf("Metagraph() returned %d neurons, want 2", len(neurons))
	}
	// Registry order is preserved, not re-sorted by uid.
	if neurons[0].UID != 2 || neurons[1].UID != 0 {
		t.Errorf("neuron order = [%d %d], want [2 0]", neurons[0].UID, neurons[1].UID)
	}
	if neurons[0].Axon == nil || neurons[0].Axon.IP != "1.2.3.4" {
		t.Errorf("neuron 0 axon = %+v, want ip 1.2.3.4", neurons[0].Axon)
	}
	if neurons[1].Axon != nil {
		t.Errorf("neuron 1 axon = %+v, want nil", neurons[1].Axon)
	}
}

func TestUpstreamErrorPropagatedUnchanged(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limit exceeded"}`))
	}, 0)

	_, err := client.Metagraph(context.Background(), 8, 500)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", upstream.StatusCode)
	}
	if upstream.Body != `{"message":"rate limit exceeded"}` {
		t.Errorf("Body = %q, want upstream body unchanged", upstream.Body)
	}
}

func TestCallsArePaced(t *testing.T) {
	var calls int32
	const interval = 150 * time.Millisecond
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"data":[]}`))
	}, interval)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.SubnetInfo(context.Background(), 8); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// First call is immediate (burst 1); the next two each wait a full
	// interval.
	if elapsed < 2*interval {
		t.Errorf("3 calls finished in %v, want >= %v", elapsed, 2*interval)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestPacingRespectsContextCancel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}, time.Hour)

	// Burn the burst slot.
	if _, err := client.SubnetInfo(context.Background(), 8); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.SubnetInfo(ctx, 8); err == nil {
		t.Error("second call did not fail under a cancelled pacing wait")
	}
}

func TestProbe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pagination":{"total_items":1},"data":[{"netuid":8}]}`))
	}, 0)

	got, err := client.Probe(context.Background(), 8)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !got.SubnetFound || !got.HasPagination || !got.HasData || got.DataCount != 1 {
		t.Errorf("Probe() = %+v, want subnet found with pagination and one row", got)
	}
}
