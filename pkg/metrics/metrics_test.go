package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.RegisterWritesTotal == nil || r.LinksTotal == nil || r.BreakCyclesTotal == nil {
		t.Error("counters not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecording(t *testing.T) {
	r := NewRegistry()

	r.RecordRegisterWrite(0x20)
	r.RecordRegisterWrite(0x20)
	r.RecordRegisterWrite(0x23)
	r.RecordLink(ResultOK)
	r.RecordLink(ResultInvalid)
	r.RecordBreakCycle()
	r.RecordApply(120*time.Millisecond, 100*time.Millisecond)
	r.SetActiveSwitches(3)

	if got := counterValue(t, r.RegisterWritesTotal.WithLabelValues("0x20")); got != 2 {
		t.Errorf("writes to 0x20 = %v, want 2", got)
	}
	if got := counterValue(t, r.LinksTotal.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok links = %v, want 1", got)
	}
	if got := counterValue(t, r.BreakCyclesTotal); got != 1 {
		t.Errorf("break cycles = %v, want 1", got)
	}
	if got := counterValue(t, r.SettleSecondsTotal); got < 0.099 || got > 0.101 {
		t.Errorf("settle seconds = %v, want 0.1", got)
	}

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families gathered")
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.RecordRegisterWrite(0x20)
	r.RecordLink(ResultOK)
	r.RecordBreakCycle()
	r.RecordApply(time.Second, time.Second)
	r.SetActiveSwitches(1)
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordBreakCycle()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "relaymatrix_break_cycles_total 1") {
		t.Errorf("exposition missing break cycle counter:\n%s", rec.Body.String())
	}
}
