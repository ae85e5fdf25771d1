// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()

	m.GetOrCreateCountMeter("count").Add(1)
	m.GetOrCreateCountVecMeter("countVec", []string{"status"}).AddWithLabel(1, map[string]string{"status": "ok"})
	m.GetOrCreateGaugeMeter("gauge").Set(3)
	m.GetOrCreateGaugeVecMeter("gaugeVec", []string{"event"}).SetWithLabel(3, map[string]string{"event": "hit"})
	m.GetOrCreateHistogramMeter("hist", Bucket10s).Observe(10)
	assert.Nil(t, m.GetOrCreateHandler())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("test_count")
	countVec := CounterVec("test_count_vec", []string{"status"})
	gauge := Gauge("test_gauge")
	gaugeVec := GaugeVec("test_gauge_vec", []string{"event"})
	hist := Histogram("test_hist", Bucket10s)

	count.Add(2)
	Counter("test_count").Add(3)
	countVec.AddWithLabel(1, map[string]string{"status": "ok"})
	countVec.AddWithLabel(4, map[string]string{"status": "ok"})
	countVec.AddWithLabel(1, map[string]string{"status": "failed"})
	gauge.Set(10)
	gauge.Add(-3)
	gaugeVec.SetWithLabel(4, map[string]string{"event": "hit"})
	gaugeVec.SetWithLabel(9, map[string]string{"event": "hit"})
	hist.Observe(700)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, namespace+"_test_count")
	assert.Equal(t, float64(5), byName[namespace+"_test_count"].GetMetric()[0].GetCounter().GetValue())

	require.Contains(t, byName, namespace+"_test_gauge")
	assert.Equal(t, float64(7), byName[namespace+"_test_gauge"].GetMetric()[0].GetGauge().GetValue())

	require.Contains(t, byName, namespace+"_test_gauge_vec")
	assert.Equal(t, float64(9), byName[namespace+"_test_gauge_vec"].GetMetric()[0].GetGauge().GetValue())

	require.Contains(t, byName, namespace+"_test_count_vec")
	total := float64(0)
	for _, m := range byName[namespace+"_test_count_vec"].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(6), total)

	require.Contains(t, byName, namespace+"_test_hist")
	assert.Equal(t, uint64(1), byName[namespace+"_test_hist"].GetMetric()[0].GetHistogram().GetSampleCount())

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), namespace+"_test_count 5")
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 42, f())
	assert.Equal(t, 42, f())
	assert.Equal(t, 1, calls)
}
