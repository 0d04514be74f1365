package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	Init()
	Init() // second call is a no-op

	IncSplitCreated("equal")
	IncSplitCreated("equal")
	IncAllocationRejected("")
	IncSettlementChange("self", "paid")
	ObserveRPC("/splitledger.v1.SplitService/GetSplit", "", 15*time.Millisecond)

	if got := testutil.ToFloat64(splitsCreated.WithLabelValues("equal")); got != 2 {
		t.Errorf("splits_created_total{equal} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(allocationRejections.WithLabelValues("unknown")); got != 1 {
		t.Errorf("allocation_rejections_total{unknown} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rpcRequests.WithLabelValues("/splitledger.v1.SplitService/GetSplit", "ok")); got != 1 {
		t.Errorf("rpc_requests_total = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"splitledger_splits_created_total", "splitledger_settlement_changes_total", "splitledger_rpc_duration_seconds"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
