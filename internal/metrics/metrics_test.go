package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(reservationCreated.WithLabelValues("conflict"))
	IncReservationCreated("conflict")
	IncReservationCreated("conflict")
	if got := testutil.ToFloat64(reservationCreated.WithLabelValues("conflict")) - before; got != 2 {
		t.Errorf("reservation_created_total{outcome=conflict} delta = %v, want 2", got)
	}

	before = testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	IncCacheLookup(true)
	IncCacheLookup(false)
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("hit")) - before; got != 1 {
		t.Errorf("cache_lookups_total{result=hit} delta = %v, want 1", got)
	}

	ObserveHTTPRequest("GET", "/api/health", 200, 15*time.Millisecond)
	if n := testutil.CollectAndCount(httpRequests); n == 0 {
		t.Error("http_request_duration_seconds has no series")
	}
}
