package reporting

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesObservedCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveDUE(3)
	m.ObserveSDC(5)
	m.ObserveRetire(7)
	m.SetActiveRuns(4)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `dram_fault_sim_due_total{year="3"} 1`))
	require.True(t, strings.Contains(body, `dram_fault_sim_sdc_total{year="5"} 1`))
	require.True(t, strings.Contains(body, `dram_fault_sim_retire_total{year="7"} 1`))
	require.True(t, strings.Contains(body, `dram_fault_sim_active_runs 4`))
}
