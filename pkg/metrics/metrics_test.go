package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestManagerRecordsAndServes(t *testing.T) {
	m := NewManager(WithNamespace("testns"))

	m.IncCycle(ResultSuccess)
	m.IncCycle(ResultFailed)
	m.IncItem(ActionInsert)
	m.IncItem(ActionNoop)
	m.IncFetchRetry()
	m.ObserveCycleDuration(2 * time.Second)
	m.ObserveStoreOp("get", 5*time.Millisecond)
	m.SetLastSuccess(time.Unix(1700000000, 0))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`testns_sync_cycles_total{result="success"} 1`,
		`testns_sync_cycles_total{result="failed"} 1`,
		`testns_sync_items_total{action="insert"} 1`,
		`testns_sync_fetch_retries_total 1`,
		`testns_sync_last_success_timestamp_seconds 1.7e+09`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestGlobalHelpers(t *testing.T) {
	IncCycle(ResultSuccess)
	IncItem(ActionUpdate)
	IncFetchRetry()
	ObserveCycleDuration(time.Second)
	ObserveStoreOp("set", time.Millisecond)
	SetLastSuccess(time.Now())

	if Handler() == nil {
		t.Fatal("global Handler should not be nil")
	}
}
